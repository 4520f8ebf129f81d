package routes

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	_ "payment_records/docs"
	"payment_records/internal/adapter/http/dto/request"
	"payment_records/internal/adapter/http/handlers"
	"payment_records/internal/adapter/persistence/repository"
	"payment_records/internal/infrastructure/config"
	"payment_records/internal/infrastructure/database"
	"payment_records/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Run wires storage, use case and handlers and starts the server.
func Run(ctx context.Context, cfg *config.Config, migrate bool) error {
	store, err := BuildRepository(ctx, cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	router, err := NewRouter(cfg, usecase.NewPaymentUseCase(store))
	if err != nil {
		return err
	}

	log.Printf("[server] listening on port %d storage=%s", cfg.Port, cfg.StorageDriver)
	return router.Run(":" + strconv.Itoa(cfg.Port))
}

// BuildRepository opens the storage selected by STORAGE_DRIVER.
func BuildRepository(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverDynamoDB:
		client, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		return repository.NewPaymentDynamoRepository(client), nil
	default:
		db, err := database.ConnectPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return repository.NewPaymentGormRepository(db), nil
	}
}

func NewRouter(cfg *config.Config, uc usecase.IPaymentUseCase) (*gin.Engine, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if err := request.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	setMiddlewares(router, cfg)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	addPingRoutes(router, handlers.NewHealthHandler(uc))
	addPaymentRoutes(router, handlers.NewPaymentHandler(uc, cfg.PublicBaseURL))
	return router, nil
}

func setMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Location"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}
