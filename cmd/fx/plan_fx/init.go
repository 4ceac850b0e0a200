package plan_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tierly/internal/config"
	"tierly/internal/repositories"
	"tierly/internal/services"
	mem "tierly/pkg/memcache"
)

var Module = fx.Provide(
	providePlanRepo,
	provideCatalogService,
	services.NewPlanService,
)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func provideCatalogService(
	planRepo repositories.IPlanRepository,
	cache mem.Cache[*repositories.Catalog],
	cfg config.CatalogConfig,
	log *zap.Logger,
) services.CatalogServiceInterface {
	return services.NewCatalogService(planRepo, cache, cfg, log.Named("catalog"))
}
