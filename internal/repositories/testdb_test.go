package repositories

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"tierly/internal/infra"
	"tierly/internal/models/db_models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.AutoMigrate(db))
	return db
}

func intPtr(v int) *int { return &v }

// seedCatalog inserts free/gold/platinum out of price order.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	plans := []db_models.Plan{
		{ID: "platinum", Name: "platinum", DisplayName: "Platinum", PriceMonthly: decimal.NewFromInt(2980), PriceYearly: decimal.NewFromInt(29800), IsActive: true},
		{ID: "free", Name: "free", DisplayName: "Free", PriceMonthly: decimal.Zero, PriceYearly: decimal.Zero, IsActive: true},
		{ID: "gold", Name: "gold", DisplayName: "Gold", PriceMonthly: decimal.NewFromInt(980), PriceYearly: decimal.NewFromInt(9800), IsActive: true},
		{ID: "legacy", Name: "legacy", DisplayName: "Legacy", PriceMonthly: decimal.NewFromInt(500), IsActive: false},
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&plans).Error)

	features := []db_models.Feature{
		{ID: "ai_requests", Name: "ai_requests", DisplayName: "AI requests", IsActive: true},
		{ID: "export", Name: "export", DisplayName: "Export", IsActive: true},
		{ID: "beta_lab", Name: "beta_lab", DisplayName: "Beta lab", IsActive: false},
	}
	require.NoError(t, db.Create(&features).Error)

	pfs := []db_models.PlanFeature{
		{PlanID: "free", FeatureID: "ai_requests", Enabled: false, LimitValue: intPtr(0)},
		{PlanID: "gold", FeatureID: "ai_requests", Enabled: true, LimitValue: intPtr(100)},
		{PlanID: "gold", FeatureID: "export", Enabled: true},
		{PlanID: "gold", FeatureID: "beta_lab", Enabled: true},
		{PlanID: "platinum", FeatureID: "ai_requests", Enabled: true},
		{PlanID: "platinum", FeatureID: "export", Enabled: true},
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&pfs).Error)
}

func seedUser(t *testing.T, db *gorm.DB, planID string) uuid.UUID {
	t.Helper()
	u := db_models.User{Name: "Test", Email: "test@example.com", PlanID: planID}
	require.NoError(t, db.Omit("Plan").Create(&u).Error)
	return u.ID
}
