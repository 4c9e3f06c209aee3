package routes

import (
	"net/http"
	"time"

	"myhotel/controllers"
	"myhotel/middleware"
	"myhotel/rbac"
	"myhotel/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Availability *controllers.AvailabilityController
	Bookings     *controllers.BookingController
	Payments     *controllers.PaymentController
	Guests       *controllers.GuestController
	Contacts     *controllers.ContactController
	Inventory    *controllers.InventoryController
	Roles        *controllers.RoleController
	Users        *controllers.UserController
	Auth         *controllers.AuthController
}

type Options struct {
	CORSOrigins []string
	Tokens      middleware.TokenResolver
	Principals  middleware.PrincipalLoader
	Log         *zap.Logger
}

func corsConfig(origins []string) cors.Config {
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
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Paystack-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter mounts the public booking API and the guarded admin API.
func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		utils.JSONError(c, http.StatusNotFound, "route not found")
	})

	api := r.Group("/api")
	{
		api.GET("/availability", ctl.Availability.Check)
		api.POST("/availability", ctl.Availability.Check)
		api.GET("/room-types", ctl.Inventory.PublicRoomTypes)

		api.POST("/bookings", ctl.Bookings.Submit)
		api.POST("/contact", ctl.Contacts.Submit)

		payments := api.Group("/payments")
		{
			payments.POST("/expected-amount", ctl.Payments.StoreExpectedAmount)
			payments.POST("/verify", ctl.Payments.Verify)
			payments.POST("/webhook", ctl.Payments.Webhook)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/logout", ctl.Auth.Logout)
		}
	}

	admin := api.Group("/admin")
	admin.Use(middleware.Authenticate(opts.Tokens, opts.Principals, log))

	guard := func(s rbac.Section, cat rbac.Category, a rbac.Action) gin.HandlerFunc {
		return middleware.RequireAccess(rbac.Require(s, cat, a), log)
	}

	admin.GET("/me", ctl.Auth.Me)
	admin.GET("/permissions", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionView), ctl.Roles.ListPermissions)

	bookings := admin.Group("/bookings")
	{
		view := guard(rbac.SectionBooking, rbac.CategoryBooking, rbac.ActionView)
		edit := guard(rbac.SectionBooking, rbac.CategoryBooking, rbac.ActionEdit)
		del := guard(rbac.SectionBooking, rbac.CategoryBooking, rbac.ActionDelete)

		bookings.GET("", view, ctl.Bookings.List)
		bookings.GET("/export", view, ctl.Bookings.ExportXLSX)
		bookings.GET("/summary", view, ctl.Bookings.Summary)
		bookings.GET("/room-availability", view, ctl.Bookings.RoomAvailability)
		bookings.GET("/:id", view, ctl.Bookings.Get)
		bookings.GET("/:id/guests", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionView), ctl.Guests.ByBooking)
		bookings.POST("", guard(rbac.SectionBooking, rbac.CategoryBooking, rbac.ActionAdd), ctl.Bookings.Create)
		bookings.PUT("/:id", edit, ctl.Bookings.Edit)
		bookings.POST("/:id/confirm", edit, ctl.Bookings.Confirm)
		bookings.POST("/:id/cancel", edit, ctl.Bookings.Cancel)
		bookings.DELETE("/:id", del, ctl.Bookings.Delete)
		bookings.POST("/:id/restore", del, ctl.Bookings.Restore)
		bookings.DELETE("/:id/purge", middleware.RequireSuperuser(log), ctl.Bookings.Purge)
	}

	guests := admin.Group("/guests")
	{
		guests.GET("", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionView), ctl.Guests.List)
		guests.GET("/:id", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionView), ctl.Guests.Get)
		guests.POST("", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionAdd), ctl.Guests.Create)
		guests.PUT("/:id", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionEdit), ctl.Guests.Update)
		guests.DELETE("/:id", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionDelete), ctl.Guests.Delete)
		guests.POST("/:id/restore", guard(rbac.SectionGuest, rbac.CategoryGuest, rbac.ActionDelete), ctl.Guests.Restore)
	}

	rooms := admin.Group("/rooms")
	{
		rooms.GET("", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionView), ctl.Inventory.ListRooms)
		rooms.GET("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionView), ctl.Inventory.GetRoom)
		rooms.POST("", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionAdd), ctl.Inventory.CreateRoom)
		rooms.PUT("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionEdit), ctl.Inventory.UpdateRoom)
		rooms.PATCH("/:id/availability", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionEdit), ctl.Inventory.SetRoomAvailability)
		rooms.DELETE("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionDelete), ctl.Inventory.DeleteRoom)
		rooms.POST("/:id/restore", guard(rbac.SectionRoomSetup, rbac.CategoryRoom, rbac.ActionDelete), ctl.Inventory.RestoreRoom)
	}

	roomTypes := admin.Group("/room-types")
	{
		roomTypes.GET("", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionView), ctl.Inventory.ListRoomTypes)
		roomTypes.GET("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionView), ctl.Inventory.GetRoomType)
		roomTypes.POST("", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionAdd), ctl.Inventory.CreateRoomType)
		roomTypes.PUT("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionEdit), ctl.Inventory.UpdateRoomType)
		roomTypes.PUT("/:id/amenities", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionEdit), ctl.Inventory.SetRoomTypeAmenities)
		roomTypes.DELETE("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionDelete), ctl.Inventory.DeleteRoomType)
		roomTypes.POST("/:id/restore", guard(rbac.SectionRoomSetup, rbac.CategoryRoomType, rbac.ActionDelete), ctl.Inventory.RestoreRoomType)
	}

	roomAmenities := admin.Group("/room-amenities")
	{
		roomAmenities.GET("", guard(rbac.SectionRoomSetup, rbac.CategoryRoomAmenity, rbac.ActionView), ctl.Inventory.ListRoomAmenities)
		roomAmenities.POST("", guard(rbac.SectionRoomSetup, rbac.CategoryRoomAmenity, rbac.ActionAdd), ctl.Inventory.CreateRoomAmenity)
		roomAmenities.PUT("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoomAmenity, rbac.ActionEdit), ctl.Inventory.UpdateRoomAmenity)
		roomAmenities.DELETE("/:id", guard(rbac.SectionRoomSetup, rbac.CategoryRoomAmenity, rbac.ActionDelete), ctl.Inventory.DeleteRoomAmenity)
		roomAmenities.POST("/:id/restore", guard(rbac.SectionRoomSetup, rbac.CategoryRoomAmenity, rbac.ActionDelete), ctl.Inventory.RestoreRoomAmenity)
	}

	hotels := admin.Group("/hotels")
	{
		hotels.GET("", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionView), ctl.Inventory.ListHotels)
		hotels.GET("/:id", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionView), ctl.Inventory.GetHotel)
		hotels.POST("", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionAdd), ctl.Inventory.CreateHotel)
		hotels.PUT("/:id", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionEdit), ctl.Inventory.UpdateHotel)
		hotels.DELETE("/:id", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionDelete), ctl.Inventory.DeleteHotel)
		hotels.POST("/:id/restore", guard(rbac.SectionHotelSetup, rbac.CategoryHotel, rbac.ActionDelete), ctl.Inventory.RestoreHotel)
	}

	hotelAmenities := admin.Group("/hotel-amenities")
	{
		hotelAmenities.GET("", guard(rbac.SectionHotelSetup, rbac.CategoryHotelAmenity, rbac.ActionView), ctl.Inventory.ListHotelAmenities)
		hotelAmenities.POST("", guard(rbac.SectionHotelSetup, rbac.CategoryHotelAmenity, rbac.ActionAdd), ctl.Inventory.CreateHotelAmenity)
		hotelAmenities.PUT("/:id", guard(rbac.SectionHotelSetup, rbac.CategoryHotelAmenity, rbac.ActionEdit), ctl.Inventory.UpdateHotelAmenity)
		hotelAmenities.DELETE("/:id", guard(rbac.SectionHotelSetup, rbac.CategoryHotelAmenity, rbac.ActionDelete), ctl.Inventory.DeleteHotelAmenity)
		hotelAmenities.POST("/:id/restore", guard(rbac.SectionHotelSetup, rbac.CategoryHotelAmenity, rbac.ActionDelete), ctl.Inventory.RestoreHotelAmenity)
	}

	contacts := admin.Group("/contact-messages")
	{
		contacts.GET("", guard(rbac.SectionContact, rbac.CategoryContactMessage, rbac.ActionView), ctl.Contacts.List)
		contacts.GET("/:id", guard(rbac.SectionContact, rbac.CategoryContactMessage, rbac.ActionView), ctl.Contacts.Get)
		contacts.DELETE("/:id", guard(rbac.SectionContact, rbac.CategoryContactMessage, rbac.ActionDelete), ctl.Contacts.Delete)
		contacts.POST("/:id/restore", guard(rbac.SectionContact, rbac.CategoryContactMessage, rbac.ActionDelete), ctl.Contacts.Restore)
	}

	roles := admin.Group("/roles")
	{
		roles.GET("", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionView), ctl.Roles.ListRoles)
		roles.GET("/:id", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionView), ctl.Roles.GetRole)
		roles.POST("", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionAdd), ctl.Roles.CreateRole)
		roles.PUT("/:id", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionEdit), ctl.Roles.UpdateRole)
		roles.PUT("/:id/permissions", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionEdit), ctl.Roles.SetPermissions)
		roles.DELETE("/:id", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionDelete), ctl.Roles.DeleteRole)
	}

	users := admin.Group("/users")
	{
		users.GET("", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionView), ctl.Users.List)
		users.GET("/:id", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionView), ctl.Users.Get)
		users.POST("", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionAdd), ctl.Users.Create)
		users.PUT("/:id", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionEdit), ctl.Users.Update)
		users.DELETE("/:id", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionDelete), ctl.Users.Delete)
		users.POST("/:id/restore", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionDelete), ctl.Users.Restore)
		users.GET("/:id/roles", guard(rbac.SectionAccount, rbac.CategoryUser, rbac.ActionView), ctl.Users.Roles)
		users.POST("/:id/roles", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionEdit), ctl.Users.AssignRole)
		users.DELETE("/:id/roles/:role_id", guard(rbac.SectionAccount, rbac.CategoryRole, rbac.ActionEdit), ctl.Users.RemoveRole)
	}

	return r
}
