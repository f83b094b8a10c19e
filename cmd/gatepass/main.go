package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/gatepass/gatepass/internal/badge"
	"github.com/gatepass/gatepass/internal/config"
	"github.com/gatepass/gatepass/internal/infra/database"
	"github.com/gatepass/gatepass/internal/infra/gateway"
	"github.com/gatepass/gatepass/internal/infra/repository"
	"github.com/gatepass/gatepass/internal/interface/rest"
	"github.com/gatepass/gatepass/internal/interface/rest/middleware"
	"github.com/gatepass/gatepass/internal/service"
	"github.com/gatepass/gatepass/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	recordRepo := repository.NewAccreditationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	zoneRepo := repository.NewZoneRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	verifyCache := repository.NewVerifyCache(rdb)

	var notifier usecase.Notifier
	if conf.Server.NotifyWebhookURL != "" {
		notifier = gateway.NewWebhookNotifier(conf.Server.NotifyWebhookURL)
	}

	var artifacts *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		artifacts = database.NewMemcached(conf.Server.MemcachedAddr)
	}
	exporter := badge.NewExporter(conf.Server.PublicOrigin, badge.NewInliner(), artifacts)

	accreditationUC := usecase.NewAccreditationUsecase(recordRepo, eventRepo, auditRepo, notifier)
	exportUC := usecase.NewExportUsecase(recordRepo, eventRepo, zoneRepo, exporter)
	verifyUC := usecase.NewVerifyUsecase(recordRepo, verifyCache)

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.Server.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(auth)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("gatepass"))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler := rest.NewHandler(accreditationUC, exportUC, verifyUC, eventRepo, zoneRepo, signal)
	handler.RegisterRoutes(e, authMiddleware)

	e.Logger.Fatal(e.Start(conf.Server.Addr))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(
			semconv.ServiceNameKey.String("gatepass"),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}, nil
}
