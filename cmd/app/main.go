package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go.uber.org/zap"

	"fulfillment/cmd"
	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/rabbitmq"
	"fulfillment/internal/adapters/out/realtime"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()

	logger.Init(configs.Env)
	defer logger.Sync()

	gormDB, err := gorm.Open(gormpostgres.Open(postgresDSN(configs)), &gorm.Config{})
	if err != nil {
		logger.L().Fatal("connect to postgres", zap.Error(err))
	}

	amqpClient, err := rabbitmq.NewClient(configs.AmqpURL)
	if err != nil {
		logger.L().Fatal("connect to rabbitmq", zap.Error(err))
	}
	defer amqpClient.Close()

	hub := realtime.NewHub()

	root := cmd.NewCompositionRoot(
		configs,
		gormDB,
		hub,
		rabbitmq.NewDispatchQueue(amqpClient),
		rabbitmq.NewNotifier(amqpClient),
	)

	jobManager := jobs.NewJobManager(root.CreateSweepReadyOrdersCommandHandler(), configs.SweepSchedule)
	if err = jobManager.StartAll(); err != nil {
		logger.L().Fatal("start jobs", zap.Error(err))
	}
	defer jobManager.StopAll()

	server := httpadapter.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateUpdateOrderStatusCommandHandler(),
		root.CreateCancelOrderCommandHandler(),
		root.CreateCourierHeartbeatCommandHandler(),
		root.CreateGetOrderQueryHandler(),
		root.CreateListOrdersQueryHandler(),
		hub,
		jobManager,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(
		httpadapter.RequestIDMiddleware(),
		httpadapter.LoggingMiddleware(),
		httpadapter.PrometheusMiddleware(),
	)
	server.RegisterRoutes(e, []byte(configs.JWTSecret))

	go func() {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil {
			logger.L().Info("http server stopped", zap.Error(startErr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.L().Warn("http shutdown", zap.Error(err))
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		// Environment variables may come from the runtime instead.
		fmt.Fprintln(os.Stderr, "no .env file loaded")
	}

	config := cmd.Config{
		Env:           os.Getenv("APP_ENV"),
		HTTPPort:      envOrDefault("HTTP_PORT", "8080"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        envOrDefault("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBSslMode:     envOrDefault("DB_SSLMODE", "disable"),
		AmqpURL:       os.Getenv("AMQP_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SweepSchedule: envOrDefault("SWEEP_SCHEDULE", "*/30 * * * * *"),
	}

	if v := os.Getenv("DELIVERY_FEE"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid DELIVERY_FEE %q, using default\n", v)
		} else {
			config.DeliveryFee = fee
		}
	}
	return config
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func postgresDSN(c cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
