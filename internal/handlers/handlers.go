package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mescore/api/internal/config"
	"mescore/api/internal/mail"
	"mescore/api/internal/middleware"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/service"
	"mescore/api/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	db          *pgxpool.Pool
	cache       *redis.Client
	authService *service.AuthService
	attachments *service.AttachmentService
	users       *repository.UserRepository
	plant       *repository.PlantRepository
	orders      *repository.WorkOrderRepository
	quality     *repository.QualityRepository
	inventory   *repository.InventoryRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, mailer mail.Mailer, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	auth := service.NewAuthService(userRepo, mailer, cfg, log)
	attachments := service.NewAttachmentService(orderRepo, store, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		db:          db,
		cache:       cache,
		authService: auth,
		attachments: attachments,
		users:       userRepo,
		plant:       plantRepo,
		orders:      orderRepo,
		quality:     qualityRepo,
		inventory:   inventoryRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	requireAuth := middleware.Auth(h.cfg, h.users)
	managerOrAdmin := middleware.RequireRoles(models.UserRoleManager, models.UserRoleAdmin)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login",
			middleware.RateLimit(h.cfg.RateLimit, h.cache, h.log, "login", h.cfg.RateLimit.LoginLimit),
			h.Login)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/forgot-password",
			middleware.RateLimit(h.cfg.RateLimit, h.cache, h.log, "forgot", h.cfg.RateLimit.ForgotLimit),
			h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)

		auth.GET("/profile", requireAuth, h.Profile)
		auth.GET("/check", requireAuth, h.Check)
	}

	admin := v1.Group("/admin")
	admin.Use(requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id/status", h.AdminUpdateUserStatus)
		admin.PATCH("/users/:id/role", h.AdminUpdateUserRole)
	}

	lines := v1.Group("/lines")
	{
		lines.GET("/board", middleware.OptionalAuth(h.cfg, h.users), h.LineBoard)
		lines.GET("", requireAuth, h.ListLines)
		lines.GET("/:id", requireAuth, h.GetLine)
		lines.POST("", requireAuth, managerOrAdmin, h.CreateLine)
		lines.PUT("/:id", requireAuth, managerOrAdmin, h.UpdateLine)
	}

	equipment := v1.Group("/equipment")
	equipment.Use(requireAuth)
	{
		equipment.GET("", h.ListEquipment)
		equipment.POST("", managerOrAdmin, h.CreateEquipment)
		equipment.PUT("/:id", managerOrAdmin, h.UpdateEquipment)
		equipment.PATCH("/:id/status", h.UpdateEquipmentStatus)
	}

	orders := v1.Group("/work-orders")
	orders.Use(requireAuth)
	{
		orders.GET("", h.ListWorkOrders)
		orders.POST("", h.CreateWorkOrder)
		orders.GET("/:id", h.GetWorkOrder)
		orders.PUT("/:id", h.UpdateWorkOrder)
		orders.DELETE("/:id", h.DeleteWorkOrder)

		orders.POST("/:id/attachments", h.UploadAttachment)
		orders.GET("/:id/attachments", h.ListAttachments)
		orders.GET("/:id/attachments/:attachmentId/download", h.DownloadAttachment)
	}

	quality := v1.Group("/quality-checks")
	quality.Use(requireAuth)
	{
		quality.GET("", h.ListQualityChecks)
		quality.POST("", h.CreateQualityCheck)
	}

	inventory := v1.Group("/inventory")
	inventory.Use(requireAuth)
	{
		inventory.GET("", h.ListInventory)
		inventory.POST("", managerOrAdmin, h.CreateInventoryItem)
		inventory.POST("/:id/adjustments", managerOrAdmin, h.AdjustInventory)
		inventory.GET("/:id/adjustments", h.ListAdjustments)
	}
}
