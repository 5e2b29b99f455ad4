package server

import (
	"fmt"
	"os"

	"github.com/eventgate/backend/config"
	"github.com/eventgate/backend/internal/handlers"
	"github.com/eventgate/backend/internal/logging"
	"github.com/eventgate/backend/internal/middleware"
	"github.com/eventgate/backend/internal/models"
	"github.com/eventgate/backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger, err := logging.New()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	r := gin.Default()

	setupRoutes(r, db, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, logger *zap.Logger) {
	svcs := services.NewSet(db, logger)

	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.ServicesMiddleware(svcs))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}

		public.GET("/ticket-types/:id", handlers.GetTicketType)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		organizer := protected.Group("")
		organizer.Use(middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin))
		{
			eventOrganizer := organizer.Group("/events")
			{
				eventOrganizer.POST("", handlers.CreateEvent)
				eventOrganizer.PUT("/:id", handlers.UpdateEvent)
				eventOrganizer.PUT("/:id/status", handlers.UpdateEventStatus)
				eventOrganizer.DELETE("/:id", handlers.DeleteEvent)
			}

			ticketTypes := organizer.Group("/ticket-types")
			{
				ticketTypes.POST("", handlers.CreateTicketType)
				ticketTypes.PUT("/:id", handlers.UpdateTicketType)
				ticketTypes.DELETE("/:id", handlers.DeleteTicketType)

				ticketTypes.POST("/:id/discounts", handlers.CreateDiscount)
				ticketTypes.GET("/:id/discounts", handlers.ListDiscounts)
				ticketTypes.PUT("/:id/discounts/:discountId", handlers.UpdateDiscount)
				ticketTypes.DELETE("/:id/discounts/:discountId", handlers.DeleteDiscount)
			}

			invites := organizer.Group("/invites")
			{
				invites.POST("", handlers.CreateInvite)
				invites.POST("/:id/revoke", handlers.RevokeInvite)
			}
		}

		protected.POST("/purchases", handlers.CreatePurchase)
		protected.GET("/tickets", handlers.ListMyTickets)
		protected.GET("/tickets/:id/qr", handlers.GenerateTicketQR)
		protected.POST("/invites/redeem", handlers.RedeemInvite)

		checkin := protected.Group("/validations")
		checkin.Use(middleware.RequireRoles(models.RoleStaff, models.RoleOrganizer, models.RoleAdmin))
		{
			checkin.POST("", handlers.ValidateTicket)
		}
	}
}
