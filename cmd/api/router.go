package main

import (
	"context"
	"net/http"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/auth"
	"github.com/PrassV/Propo-Staging-sub004/internal/cleanup"
	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/functions"
	"github.com/PrassV/Propo-Staging-sub004/internal/handlers"
	"github.com/PrassV/Propo-Staging-sub004/internal/logging"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/PrassV/Propo-Staging-sub004/internal/ratelimit"
	"github.com/PrassV/Propo-Staging-sub004/internal/scheduler"
	"github.com/PrassV/Propo-Staging-sub004/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// propertyStore is implemented by both database.DB and database.GormDB
type propertyStore interface {
	InsertProperty(ctx context.Context, p *models.Property) error
	UpdatePropertyImages(ctx context.Context, id string, urls, paths []string) error
	DeleteProperty(ctx context.Context, id string) error
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
	ListProperties(ctx context.Context, filters database.PropertyFilters) ([]models.Property, error)
	UpdateProperty(ctx context.Context, id string, update database.PropertyUpdate) (*models.Property, error)
	ListTenants(ctx context.Context, propertyID string) ([]models.Tenant, error)
	RecordDeletion(ctx context.Context, entry *models.DeleteLog) error
}

// objectStore is the image bucket
type objectStore interface {
	functions.ObjectStore
	cleanup.ObjectStore
}

// searchIndex is the optional dashboard search engine
type searchIndex interface {
	handlers.PropertySearcher
	cleanup.SearchIndex
}

// dependencies are the wired components the router serves
type dependencies struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	store     propertyStore
	gorm      *gorm.DB
	objects   objectStore
	search    searchIndex
	limiter   *ratelimit.RateLimiter
	verifier  *auth.JWTVerifier
	scheduler *scheduler.Scheduler
}

func newRouter(deps dependencies) (*gin.Engine, error) {
	cfg := deps.cfg

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logging.LogRequests {
		r.Use(logging.GinLogger(deps.logger))
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	assets, err := web.NewAssets(cfg.Web)
	if err != nil {
		return nil, err
	}
	assets.Register(r)

	// Function endpoint sets its own permissive CORS headers
	var indexer functions.Indexer
	var searcher handlers.PropertySearcher
	var searchRemover cleanup.SearchIndex
	if deps.search != nil {
		indexer = deps.search
		searcher = deps.search
		searchRemover = deps.search
	}
	var limiter functions.Limiter
	if deps.limiter != nil {
		limiter = deps.limiter
	}

	creator := functions.NewPropertyCreator(deps.store, deps.objects, indexer, cfg.Upload, deps.logger)
	functions.NewHandler(creator, deps.verifier, cfg.Auth.Required, limiter, deps.logger).Register(r)

	remover := cleanup.NewService(deps.store, deps.objects, searchRemover, deps.logger)
	propertyHandler := handlers.NewPropertyHandler(deps.store, searcher, remover, deps.logger)
	if deps.scheduler != nil {
		propertyHandler.WithReindexer(deps.scheduler)
	}
	pageHandler := handlers.NewPageHandler(deps.store, searcher, cfg.Web.Title, deps.logger)

	r.GET("/health", healthCheck)
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/properties") })
	r.GET("/properties", pageHandler.PropertiesPage)
	r.POST("/properties/:id", auth.Middleware(deps.verifier, cfg.Auth.Required), pageHandler.UpdatePropertyForm)
	r.GET("/tenants", pageHandler.TenantsPage)
	r.GET("/maintenance", pageHandler.MaintenancePage)

	api := r.Group("/api")
	api.Use(cors.New(corsConfig(cfg.CORS)))
	{
		// preflight requests are answered by the cors middleware
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		api.GET("/properties", propertyHandler.ListProperties)
		api.GET("/properties/:id", propertyHandler.GetProperty)
		api.GET("/properties/:id/tenants", propertyHandler.ListPropertyTenants)
		api.GET("/tenants", propertyHandler.ListTenants)
		api.GET("/maintenance", propertyHandler.Maintenance)
		api.GET("/search", propertyHandler.SearchProperties)
		api.GET("/ratelimit/stats", func(c *gin.Context) {
			if deps.limiter == nil {
				c.JSON(http.StatusOK, ratelimit.Stats{Enabled: false})
				return
			}
			c.JSON(http.StatusOK, deps.limiter.GetStats())
		})

		// Writes need a signed-in user when auth is required
		writes := api.Group("", auth.Middleware(deps.verifier, cfg.Auth.Required))
		writes.PATCH("/properties/:id", propertyHandler.UpdateProperty)
		writes.DELETE("/properties/:id", propertyHandler.DeleteProperty)
		writes.POST("/search/reindex", propertyHandler.ReindexProperties)

		api.GET("/search/schedule", func(c *gin.Context) {
			if deps.scheduler == nil {
				c.JSON(http.StatusOK, scheduler.Status{Enabled: false})
				return
			}
			c.JSON(http.StatusOK, deps.scheduler.Status())
		})
	}

	// Admin API routes (GORM backends only)
	if deps.gorm != nil {
		adminHandler := handlers.NewAdminHandler(deps.gorm, deps.logger)
		admin := api.Group("/admin", auth.Middleware(deps.verifier, cfg.Auth.Required))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/price-distribution", adminHandler.GetPriceDistribution)
			admin.GET("/delete-logs", adminHandler.GetDeleteLogs)
		}
		deps.logger.Infow("Admin API routes registered at /api/admin/*")
	}

	return r, nil
}

// corsConfig allows any origin when none are configured
func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}
