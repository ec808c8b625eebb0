package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/api"
	"github.com/moxuan/werewolf-judge/internal/auth"
	"github.com/moxuan/werewolf-judge/internal/bus"
	"github.com/moxuan/werewolf-judge/internal/config"
	"github.com/moxuan/werewolf-judge/internal/observability"
	"github.com/moxuan/werewolf-judge/internal/realtime"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/room"
	"github.com/moxuan/werewolf-judge/internal/store"
	"github.com/moxuan/werewolf-judge/internal/template"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	logger, err := observability.SetupLogger()
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logger.Sync()
	roles.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := observability.SetupTracerProvider(ctx, "werewolf-judge", cfg.TraceStdout, logger)
	if err != nil {
		logger.Fatal("cannot init tracer", zap.Error(err))
	}
	defer tp.Shutdown(ctx)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	snapshots, users := connectStores(cfg, logger)
	defer snapshots.Close()

	templates := template.NewRegistry()
	if cfg.TemplatesPath != "" {
		if err := templates.LoadFile(cfg.TemplatesPath); err != nil {
			logger.Fatal("cannot load template catalog", zap.Error(err))
		}
		logger.Info("template catalog loaded", zap.String("path", cfg.TemplatesPath))
	}

	var roomBus bus.Bus
	if cfg.AMQPURL != "" {
		amqpBus, err := bus.DialAMQP(bus.Config{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Logger:   observability.ZapToSlog(logger),
			Metrics:  metrics,
		})
		if err != nil {
			logger.Warn("cannot connect broker, falling back to in-process bus", zap.Error(err))
			roomBus = bus.NewInprocBus()
		} else {
			logger.Info("message bus connected", zap.String("exchange", cfg.AMQPExchange))
			roomBus = amqpBus
		}
	} else {
		roomBus = bus.NewInprocBus()
	}

	roomMgr := room.NewManager(ctx, snapshots, roomBus, logger, metrics, templates, room.Options{
		WolfVoteTimeout: cfg.WolfVoteTimeout,
		StepTimeout:     cfg.StepTimeout,
	})
	defer roomMgr.Close()

	wsServer := realtime.NewWSServer(jwtMgr, roomMgr, logger, metrics, cfg.WSReadBufferSize, cfg.WSWriteBufferSize)
	server := api.NewServer(users, jwtMgr, roomMgr, templates, wsServer, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router}
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}

// connectStores picks the snapshot backend and the user store, falling
// back to process memory when nothing is reachable.
func connectStores(cfg config.Config, logger *zap.Logger) (store.SnapshotStore, store.UserStore) {
	switch cfg.SnapshotBackend {
	case "redis":
		rs, err := store.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			logger.Warn("cannot connect redis, falling back to IN-MEMORY MODE", zap.Error(err))
			return store.NewMemoryStore(), store.NewMemoryUserStore()
		}
		logger.Info("snapshot store: redis", zap.String("addr", cfg.RedisAddr))
		return rs, store.NewMemoryUserStore()

	case "memory":
		return store.NewMemoryStore(), store.NewMemoryUserStore()

	default:
		db, err := store.ConnectMySQL(cfg.DBDSN)
		if err != nil {
			logger.Warn("cannot connect db, falling back to IN-MEMORY MODE", zap.Error(err))
			return store.NewMemoryStore(), store.NewMemoryUserStore()
		}
		snaps, err := store.NewMySQLStore(db)
		if err != nil {
			logger.Warn("cannot prepare snapshot table, falling back to IN-MEMORY MODE", zap.Error(err))
			db.Close()
			return store.NewMemoryStore(), store.NewMemoryUserStore()
		}
		users, err := store.NewMySQLUserStore(db)
		if err != nil {
			logger.Warn("cannot prepare users table, using in-memory users", zap.Error(err))
			return snaps, store.NewMemoryUserStore()
		}
		logger.Info("snapshot store: mysql")
		return snaps, users
	}
}
