package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRepository_ActivePlansOrderedByPrice(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewPlanRepository(db)

	plans, err := repo.GetActivePlansWithFeatures(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(plans))
	prices := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
		prices = append(prices, p.PriceMonthly.String())
	}
	assert.Equal(t, []string{"free", "gold", "platinum"}, ids)
	assert.Equal(t, []string{"0", "980", "2980"}, prices)

	gold := plans[1]
	require.Len(t, gold.Features, 3)
	assert.Equal(t, "ai_requests", gold.Features[0].FeatureID)
	assert.Equal(t, "AI requests", gold.Features[0].Feature.DisplayName)
	require.NotNil(t, gold.Features[0].LimitValue)
	assert.Equal(t, 100, *gold.Features[0].LimitValue)
}

func TestPlanRepository_GetCatalog(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewPlanRepository(db)

	c, err := repo.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Plans, 4)
	assert.Len(t, c.Features, 3)
	assert.Len(t, c.PlanFeatures, 6)
	assert.Equal(t, "free", c.PlanFeatures[0].PlanID)
}
