package routes

import (
	"EstateHub/config"
	"EstateHub/handlers"
	"EstateHub/middleware"
	"EstateHub/models"
	"EstateHub/storage"
	"EstateHub/tasks"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Deps struct {
	Settings  config.Settings
	Runner    *tasks.Runner
	Logger    *zap.Logger
	Uploader  storage.ImageUploader
	Mailer    handlers.Mailer
	Geocoder  handlers.Geocoder
	Federated handlers.FederatedExchanger
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	users := config.GetCollection(config.CollectionName("USER", "user"))

	userController := handlers.NewUserController(users, d.Runner, d.Mailer, d.Federated, d.Logger)
	propertyController := handlers.NewPropertyController(
		config.GetCollection(config.CollectionName("PROPERTIES", "properties")), d.Settings.ListingsCacheTTL, d.Logger)
	wishlistController := handlers.NewWishlistController(
		config.GetCollection(config.CollectionName("WISHLIST", "wishlist")))
	notificationController := handlers.NewNotificationController(
		config.GetCollection(config.CollectionName("NOTIFICATIONS", "notifications")), users, d.Runner)
	visitController := handlers.NewVisitController(
		config.GetCollection(config.CollectionName("VISITS", "visits")), notificationController)
	reviewController := handlers.NewReviewController(
		config.GetCollection(config.CollectionName("REVIEWS", "reviews")), d.Uploader, d.Logger)
	paymentController := handlers.NewPaymentController(
		config.GetCollection(config.CollectionName("PAYMENTS", "payments")),
		d.Settings.PaymentKeyID, d.Settings.PaymentKeySecret, d.Runner, d.Mailer, notificationController, d.Logger)
	geocodeController := handlers.NewGeocodeController(d.Geocoder, d.Settings.GeocodeCacheTTL, d.Logger)

	auth := middleware.JWTMiddleware()
	staff := middleware.RequireRoles(middleware.MongoRoleLookup(users), models.RoleAdmin, models.RoleOwner)

	e.GET("/health", handlers.HealthCheck)

	e.POST("/auth/register", userController.Register)
	e.POST("/auth/login", userController.Login)
	e.POST("/auth/google", userController.GoogleSignIn)
	e.POST("/auth/password-reset", userController.RequestPasswordReset)
	e.POST("/auth/verify-email", userController.RequestEmailVerification, auth)
	e.GET("/auth/me", userController.Me, auth)

	e.GET("/role", userController.GetRole)
	e.POST("/user", userController.UpsertUser, auth)
	e.GET("/profile", userController.GetProfile, auth)
	e.PUT("/profile", userController.UpdateProfile, auth)
	e.DELETE("/profile", userController.DeleteAccount, auth)
	e.GET("/users", userController.GetAllUsers, auth, staff)
	e.GET("/users/search", userController.SearchUserByEmail, auth)
	e.PATCH("/users/:id/role", userController.UpdateRole, auth, staff)

	e.GET("/properties", propertyController.ListProperties)
	e.GET("/properties/:id", propertyController.GetProperty)
	e.POST("/properties", propertyController.CreateProperty, auth, staff)
	e.PUT("/properties/:id", propertyController.UpdateProperty, auth, staff)
	e.DELETE("/properties/:id", propertyController.DeleteProperty, auth, staff)

	e.GET("/wishlist", wishlistController.GetWishlist, auth)
	e.POST("/wishlist", wishlistController.AddToWishlist, auth)
	e.DELETE("/wishlist/:key", wishlistController.RemoveFromWishlist, auth)

	e.GET("/visits", visitController.ListVisits, auth)
	e.POST("/visits", visitController.CreateVisit, auth)
	e.DELETE("/visits/all", visitController.DeleteAllVisits, auth)
	e.DELETE("/visits/:id", visitController.DeleteVisit, auth)

	e.GET("/reviews", reviewController.ListReviews)
	e.POST("/reviews", reviewController.CreateReview, auth)
	e.POST("/reviews/upload-image", reviewController.UploadImage, auth)
	e.POST("/reviews/:id/helpful", reviewController.MarkHelpful)
	e.PATCH("/reviews/:id/verify", reviewController.VerifyReview, auth, staff)
	e.DELETE("/reviews/:id", reviewController.DeleteReview, auth)
	e.DELETE("/reviews", reviewController.DeleteAllReviews, auth, staff)

	e.POST("/payments/create-order", paymentController.CreateOrder, auth)
	e.POST("/payments/verify", paymentController.VerifyPayment, auth)
	e.POST("/payments/fetch-payment-details", paymentController.FetchPaymentDetails, auth)
	e.POST("/payments/send-invoice", paymentController.SendInvoice, auth)

	e.GET("/geocode", geocodeController.Geocode)

	e.GET("/notifications", notificationController.GetNotifications, auth)
	e.POST("/notifications/share", notificationController.ShareProperty, auth)
	e.PATCH("/notifications/:id/read", notificationController.MarkRead, auth)
}
