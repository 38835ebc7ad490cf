package main

import (
	"EstateHub/config"
	"EstateHub/handlers"
	appmw "EstateHub/middleware"
	"EstateHub/routes"
	"EstateHub/storage"
	"EstateHub/tasks"
	"EstateHub/utils"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	settings := config.Load()
	logger := config.NewLogger(settings.LogLevel, settings.Environment)
	defer logger.Sync()

	if settings.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(ctx, settings)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	redisClient := utils.InitRedis(settings.RedisAddr, settings.RedisPassword)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		utils.RedisClient = nil
	}

	runner := tasks.NewRunner(logger, 30*time.Second)

	deps := routes.Deps{
		Settings: settings,
		Runner:   runner,
		Logger:   logger,
		Mailer:   handlers.LogMailer{Logger: logger},
		Geocoder: handlers.NewNominatimGeocoder(settings.GeocodeURL),
	}
	if settings.S3AccessKey != "" {
		uploader, err := storage.NewS3Uploader(settings.S3Endpoint, settings.S3Region, settings.S3AccessKey,
			settings.S3SecretKey, settings.S3Bucket, settings.S3BaseURL)
		if err != nil {
			logger.Warn("image uploads disabled", zap.Error(err))
		} else {
			deps.Uploader = uploader
		}
	}
	if settings.PaymentKeySecret == "" {
		logger.Warn("PAYMENT_KEY_SECRET not set, payments disabled")
	}
	if settings.GoogleClientID != "" {
		deps.Federated = handlers.NewGoogleExchanger(settings.GoogleClientID, settings.GoogleClientSecret, settings.GoogleRedirectURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewRequestValidator()

	metrics := appmw.NewMetrics(prometheus.DefaultRegisterer)
	e.Use(middleware.RequestID())
	e.Use(appmw.ZapLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	routes.RegisterRoutes(e, deps)

	go func() {
		logger.Info("server starting", zap.String("port", settings.Port))
		if err := e.Start(":" + settings.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := runner.Wait(shutdownCtx); err != nil {
		logger.Warn("background tasks cut short", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("database disconnect", zap.Error(err))
	}
}
