package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/history"
	"github.com/Ramsey-B/clover/internal/repositories/preference"
	"github.com/Ramsey-B/clover/internal/repositories/profile"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/redis"
	healthroute "github.com/Ramsey-B/clover/pkg/routes/health"
	matchroute "github.com/Ramsey-B/clover/pkg/routes/match"
	preferenceroute "github.com/Ramsey-B/clover/pkg/routes/preference"
	profileroute "github.com/Ramsey-B/clover/pkg/routes/profile"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// dependency adapts a pair of closures to the startup.Dependency interface.
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }
func (d *dependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}
func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.WithField("app", cfg.AppName).Info("Starting service")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.TracingEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			logger.WithError(err).Error("Failed to set up tracing")
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	var (
		db          database.DB
		sqlxDB      *sqlx.DB
		redisClient *redis.Client
		graphClient *graph.Client
		producer    *kafka.Producer
		e           *echo.Echo
	)

	var checker *healthroute.Checker

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&dependency{
		name: "postgres",
		start: func(ctx context.Context) error {
			dsn := fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
			)
			conn, err := sqlx.ConnectContext(ctx, cfg.DatabaseDriver, dsn)
			if err != nil {
				return err
			}
			conn.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
			conn.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
			conn.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

			sqlxDB = conn
			db = database.NewDatabaseInstance(conn, logger)
			return nil
		},
		stop: func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
	})

	boot.AddDependency(&dependency{
		name:      "migrations",
		dependsOn: []string{"postgres"},
		start: func(ctx context.Context) error {
			driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
			if err != nil {
				return err
			}
			migrations := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
				AutoRollback:        cfg.DatabaseMigrationAutoRollback,
			})
			return migrations.Migrate(cfg.DatabaseName, driver)
		},
	})

	boot.AddDependency(&dependency{
		name: "redis",
		start: func(ctx context.Context) error {
			client, err := redis.NewClient(redis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			redisClient = client
			return nil
		},
		stop: func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		},
	})

	boot.AddDependency(&dependency{
		name: "graph",
		start: func(ctx context.Context) error {
			client, err := graph.NewClient(graph.Config{
				Host:     cfg.GraphDBHost,
				Port:     cfg.GraphDBPort,
				Username: cfg.GraphDBUser,
				Password: cfg.GraphDBPassword,
			}, logger)
			if err != nil {
				return err
			}
			if err := client.VerifyConnectivity(ctx); err != nil {
				return err
			}
			graphClient = client
			return nil
		},
		stop: func(ctx context.Context) error {
			if graphClient == nil {
				return nil
			}
			return graphClient.Close(ctx)
		},
	})

	boot.AddDependency(&dependency{
		name: "kafka",
		start: func(ctx context.Context) error {
			producer = kafka.NewProducer(kafka.ProducerConfig{
				Brokers:      cfg.KafkaBrokers,
				Topic:        cfg.KafkaOutputTopic,
				BatchSize:    cfg.KafkaBatchSize,
				BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
				RequiredAcks: cfg.KafkaRequiredAcks,
				Compression:  cfg.KafkaCompression,
			}, logger)
			return nil
		},
		stop: func(ctx context.Context) error {
			if producer == nil {
				return nil
			}
			return producer.Close()
		},
	})

	boot.AddDependency(&dependency{
		name:      "http",
		dependsOn: []string{"postgres", "migrations", "redis", "graph", "kafka"},
		start: func(ctx context.Context) error {
			profileRepo := profile.NewRepository(db, logger)
			preferenceRepo := preference.NewRepository(db, logger)
			historyRepo := history.NewRepository(redisClient, logger)
			emitter := events.NewEmitter(producer, logger)
			network := graph.NewMatchNetwork(graphClient, logger)

			svc := matching.NewService(logger, profileRepo, preferenceRepo, historyRepo, emitter, network, matching.Config{
				MaxResults:       cfg.MatchMaxResults,
				MinPercentage:    cfg.MatchMinPercentage,
				CandidatePoolCap: cfg.MatchCandidatePoolCap,
			})

			container, err := ectoinject.NewDIDefaultContainer()
			if err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[profile.ProfileRepository](container, profileRepo); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[preference.PreferenceRepository](container, preferenceRepo); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*matching.Service](container, svc); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[graph.Network](container, network); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*events.Emitter](container, emitter); err != nil {
				return err
			}

			e = echo.New()
			e.HideBanner = true
			e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
			e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
			e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

			e.Use(echomiddleware.Recover())
			e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
				AllowOrigins: cfg.AllowOrigins,
				AllowMethods: cfg.AllowMethods,
			}))
			if cfg.TracingEnabled {
				e.Use(otelecho.Middleware(cfg.AppName))
			}
			e.Use(middleware.Context())
			e.Use(middleware.Logger(logger))
			e.HTTPErrorHandler = middleware.Error(logger)

			e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

			checker = healthroute.NewChecker(pingerFunc(db.PingContext), redisClient, pingerFunc(graphClient.VerifyConnectivity), "1.0.0")
			checker.RegisterRoutes(e)

			api := e.Group("/api/v1")
			profiles := api.Group("/profiles")
			matches := api.Group("/matches")

			profileroute.Register(profiles)
			preferenceroute.Register(profiles)
			matchroute.Register(profiles, matches)

			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("HTTP server stopped")
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			if e == nil {
				return nil
			}
			return e.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)
	logger.Infof("Service listening on port %d", cfg.Port)

	<-ctx.Done()
	logger.Info("Shutting down")
	checker.SetReady(false)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := boot.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Shutdown failed")
		os.Exit(1)
	}
}

// pingerFunc adapts a context-taking ping function to the health Pinger.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newLogger(cfg *config.Config) ectologger.Logger {
	var zlog *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		zlog.Info("log", zap.Any("entry", msg))
	})
}

func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	exporterCfg := exporters.DefaultOTLPConfig()
	exporterCfg.Endpoint = cfg.TracingOTLPEndpoint
	exporterCfg.Protocol = cfg.TracingOTLPProtocol

	exporter, err := exporters.NewOTLPExporter(ctx, exporterCfg)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
		)),
	)

	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}
