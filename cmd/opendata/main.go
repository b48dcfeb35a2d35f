package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	carparkApp "github.com/glitchjsy/opendata-api/internal/carpark/application"
	carparkHttp "github.com/glitchjsy/opendata-api/internal/carpark/infra/inbound/http"
	carparkRepo "github.com/glitchjsy/opendata-api/internal/carpark/infra/outbound/db"
	"github.com/glitchjsy/opendata-api/internal/config"
	petitionApp "github.com/glitchjsy/opendata-api/internal/petition/application"
	petitionHttp "github.com/glitchjsy/opendata-api/internal/petition/infra/inbound/http"
	petitionRepo "github.com/glitchjsy/opendata-api/internal/petition/infra/outbound/db"
	requestApp "github.com/glitchjsy/opendata-api/internal/requestlog/application"
	requestDomain "github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	requestEvents "github.com/glitchjsy/opendata-api/internal/requestlog/infra/inbound/events"
	requestHttp "github.com/glitchjsy/opendata-api/internal/requestlog/infra/inbound/http"
	requestRepo "github.com/glitchjsy/opendata-api/internal/requestlog/infra/outbound/db"
	"github.com/glitchjsy/opendata-api/pkg/logger"
	httpUtils "github.com/glitchjsy/opendata-api/pkg/utils"
	"github.com/glitchjsy/opendata-api/shared/platform/bus"
	"github.com/glitchjsy/opendata-api/shared/platform/cache"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/utils"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Debug)
	log := logger.Logger()
	defer log.Sync()

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Sugar().Warnf("config: %s", w)
	}
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := sqlstore.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}

	// ---------------- DB ----------------
	var db *sql.DB
	err = utils.Retry(ctx, 5, 500*time.Millisecond, func() error {
		var err error
		db, err = sqlstore.Open(ctx, cfg.DBDriver, cfg.DSN(), pool)
		if err != nil {
			log.Warn("database not ready", zap.String("driver", cfg.DBDriver), zap.Error(err))
		}
		return err
	})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	dialect, err := sqlstore.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal("unsupported driver", zap.Error(err))
	}
	if cfg.DBDriver == "sqlite" {
		for _, initFn := range []func(context.Context, *sql.DB) error{
			petitionRepo.InitSQLite, carparkRepo.InitSQLite, requestRepo.InitSQLite,
		} {
			if err := initFn(ctx, db); err != nil {
				log.Fatal("failed to initialize SQLite", zap.Error(err))
			}
		}
	}
	exec := sqlstore.NewExecutor(db, dialect, cfg.QueryTimeout, log)

	// Registro de peticiones: ClickHouse si está configurado.
	requestExec := exec
	if cfg.ClickHouseAddr != "" {
		ch, err := sqlstore.OpenClickHouse(ctx, cfg.ClickHouseAddr, cfg.ClickHouseDB, pool)
		if err != nil {
			log.Fatal("failed to open ClickHouse", zap.Error(err))
		}
		defer ch.Close()
		if err := requestRepo.InitClickHouse(ctx, ch); err != nil {
			log.Fatal("failed to initialize ClickHouse", zap.Error(err))
		}
		requestExec = sqlstore.NewExecutor(ch, sqlstore.ClickHouse, cfg.QueryTimeout, log)
		log.Info("Request log stored in ClickHouse", zap.String("addr", cfg.ClickHouseAddr))
	}

	// ---------------- Cache ----------------
	var cacheInstance cache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		mem := cache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer mem.Stop()
		cacheInstance = mem
	} else {
		defer rdb.Close()
		cacheInstance = cache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("Redis connected, cache enabled")
	}

	// --------------- Services --------------
	limits := query.Limits{Default: cfg.PageLimit, Max: cfg.PageMaxLimit}

	petitionService := petitionApp.NewPetitionService(
		petitionRepo.NewPetitionRepoSQL(exec, cfg.StatsConcurrent, log),
		cacheInstance, cfg.CacheTTL, limits, log)
	carparkService := carparkApp.NewCarparkService(
		carparkRepo.NewCarparkRepoSQL(exec, cfg.StatsConcurrent, log),
		cacheInstance, cfg.CacheTTL, limits, time.Now, log)

	requests := requestRepo.NewRequestRepoSQL(requestExec, cfg.StatsConcurrent, log)
	requestService := requestApp.NewRequestLogService(requests, requests, time.Now, log)
	requestConsumer := requestEvents.NewRequestConsumer(requestService, log)

	// ---------------- Events ---------------
	var publisher bus.EventPublisher
	drainBus := func() {}
	if cfg.UseKafka {
		log.Info("Using Kafka as request tracking bus", zap.Strings("brokers", cfg.KafkaBrokers))

		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopicRequests,
			Balancer: &kafka.Hash{},
		}
		defer writer.Close()
		publisher = bus.NewKafkaPublisher(writer, log)

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopicRequests,
			GroupID:  "opendata-request-log",
			MinBytes: 10e3,
			MaxBytes: 10e6,
		})
		defer reader.Close()
		bus.NewConsumerAdapter(reader, requestConsumer, log).Start(ctx)
	} else {
		log.Info("Using in-memory request tracking bus")

		memBus := bus.NewInMemoryEventBus(requestDomain.RequestsTopic)
		publisher = memBus
		// El consumidor termina al cerrar el bus, después de vaciar el Tracker.
		done := bus.BackgroundConsumer(context.WithoutCancel(ctx), memBus.Subscribe(cfg.TrackerBuffer), requestConsumer, log)
		drainBus = func() {
			memBus.Close()
			<-done
		}
	}

	tracker := requestApp.NewTracker(publisher, cfg.TrackerWorkers, cfg.TrackerBuffer, log)
	// Los workers drenan la cola en Stop aunque ctx ya esté cancelado.
	tracker.Start(context.WithoutCancel(ctx))

	// ---------------- HTTP ----------------
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.NoRoute(httpUtils.RouteNotFound)

	v1 := router.Group("/v1")
	v1.Use(requestHttp.TrackRequests(tracker, time.Now), requestHttp.RequireUserAgent())
	petitionHttp.RegisterPetitionRoutes(v1, petitionHttp.NewPetitionHandler(petitionService, log))
	carparkHttp.RegisterCarparkRoutes(v1, carparkHttp.NewCarparkHandler(carparkService, log))

	admin := router.Group("/admin")
	requestHttp.RegisterAdminStatsRoutes(admin, requestHttp.NewAdminStatsHandler(requestService, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		log.Info("Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	tracker.Stop()
	drainBus()
}
