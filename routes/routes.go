package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotel-reservations/config"
	"hotel-reservations/controllers"
	"hotel-reservations/middleware"
)

// Deps is everything the router needs.
type Deps struct {
	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client // nil disables rate limiting

	Rooms        *controllers.RoomController
	Customers    *controllers.CustomerController
	Reservations *controllers.ReservationController
	Auth         *controllers.AuthController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))

	origins := d.Config.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := middleware.RateLimit(d.Config.RateLimit, d.Redis, d.Log)
	auth := middleware.JWTAuth(d.Config.JWTSecret)

	api := r.Group("/api")
	{
		api.POST("/login", limit, d.Auth.Login)

		rooms := api.Group("/rooms")
		{
			rooms.GET("", d.Rooms.GetRooms)
			rooms.GET("/:id", d.Rooms.GetRoom)
			rooms.POST("", limit, d.Rooms.CreateRoom)
			rooms.PUT("/:id", limit, d.Rooms.UpdateRoom)
			rooms.DELETE("/:id", limit, d.Rooms.DeleteRoom)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", d.Customers.GetCustomers)
			customers.GET("/:id", d.Customers.GetCustomer)
			customers.POST("", limit, d.Customers.CreateCustomer)
			customers.PUT("/:id", limit, d.Customers.UpdateCustomer)
			customers.DELETE("/:id", limit, d.Customers.DeleteCustomer)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", d.Reservations.GetReservations)
			reservations.GET("/:id", d.Reservations.GetReservation)
			reservations.GET("/:id/events", d.Reservations.GetReservationEvents)

			// caller identity is recorded on every lifecycle event
			reservations.POST("", auth, limit, d.Reservations.CreateReservation)
			reservations.PUT("/:id", auth, limit, d.Reservations.UpdateReservation)
			reservations.DELETE("/:id", auth, limit, d.Reservations.DeleteReservation)
		}
	}

	return r
}
