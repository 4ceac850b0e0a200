package repositories

import (
	"context"

	"gorm.io/gorm"
	"tierly/internal/models/db_models"
)

type IPlanRepository interface {
	GetActivePlansWithFeatures(ctx context.Context) ([]db_models.Plan, error)
	GetCatalog(ctx context.Context) (*Catalog, error)
}

// Catalog is the full plan/feature table set. It is small and read far more than written.
type Catalog struct {
	Plans        []db_models.Plan        `json:"plans"`
	Features     []db_models.Feature     `json:"features"`
	PlanFeatures []db_models.PlanFeature `json:"plan_features"`
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

// GetActivePlansWithFeatures returns active plans cheapest first, each with its
// plan_features rows and their features preloaded.
func (p PlanRepository) GetActivePlansWithFeatures(ctx context.Context) ([]db_models.Plan, error) {

	var plans []db_models.Plan
	err := p.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Features", func(db *gorm.DB) *gorm.DB {
			return db.Order("feature_id ASC")
		}).
		Preload("Features.Feature").
		Order("price_monthly ASC").
		Order("id ASC").
		Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (p PlanRepository) GetCatalog(ctx context.Context) (*Catalog, error) {
	var c Catalog
	db := p.db.WithContext(ctx)

	if err := db.Order("id ASC").Find(&c.Plans).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Find(&c.Features).Error; err != nil {
		return nil, err
	}
	if err := db.Order("plan_id ASC, feature_id ASC").Find(&c.PlanFeatures).Error; err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Catalog) Plan(id string) (*db_models.Plan, bool) {
	for i := range c.Plans {
		if c.Plans[i].ID == id {
			return &c.Plans[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Feature(id string) (*db_models.Feature, bool) {
	for i := range c.Features {
		if c.Features[i].ID == id {
			return &c.Features[i], true
		}
	}
	return nil, false
}

func (c *Catalog) PlanFeature(planID, featureID string) (*db_models.PlanFeature, bool) {
	for i := range c.PlanFeatures {
		if c.PlanFeatures[i].PlanID == planID && c.PlanFeatures[i].FeatureID == featureID {
			return &c.PlanFeatures[i], true
		}
	}
	return nil, false
}

// ActiveFeatures keeps catalog order.
func (c *Catalog) ActiveFeatures() []db_models.Feature {
	out := make([]db_models.Feature, 0, len(c.Features))
	for _, f := range c.Features {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out
}
