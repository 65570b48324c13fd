package server

import (
	"net/http"

	"fleetcar/internal/config"
	"fleetcar/internal/handlers"
	"fleetcar/internal/middleware"
	"fleetcar/internal/models"
	"fleetcar/internal/services"
	"fleetcar/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// registerValidators adds the vehiclestatus rule used by the vehicle form
// bindings, rejecting anything outside the closed status set.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("vehiclestatus", func(fl validator.FieldLevel) bool {
			return models.VehicleStatus(fl.Field().String()).Valid()
		})
	}
}

func NewRouter(cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	registerValidators()

	images, err := storage.New(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	authSvc := services.NewAuthService(cfg)
	vehicleSvc := services.NewVehicleService(images)

	authHandler := handlers.NewAuthHandler(authSvc, log)
	vehicleHandler := handlers.NewVehicleHandler(vehicleSvc, log)
	auditHandler := handlers.NewAuditHandler(log)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS())

	r.Static("/static", "./web/static")
	r.Static("/uploads", cfg.UploadDir)
	r.StaticFile("/", "./web/static/index.html")

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/vehicles", vehicleHandler.List)
		api.GET("/vehicles/:id", vehicleHandler.Get)

		protected := api.Group("/")
		protected.Use(middleware.RequireAuth(cfg))
		{
			protected.POST("/vehicles", vehicleHandler.Create)
			protected.PUT("/vehicles/:id", vehicleHandler.Update)
			protected.DELETE("/vehicles/:id", vehicleHandler.Delete)

			protected.GET("/audit",
				middleware.RequireRole(models.RoleAdmin),
				auditHandler.List,
			)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r, nil
}
