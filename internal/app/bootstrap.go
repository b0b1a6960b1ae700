package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Somtiee/swaparc/config"
	"github.com/Somtiee/swaparc/internal/arcscan"
	"github.com/Somtiee/swaparc/internal/chain"
	"github.com/Somtiee/swaparc/internal/domain/repository"
	"github.com/Somtiee/swaparc/internal/domain/service"
	ws "github.com/Somtiee/swaparc/internal/handlers/websocket"
	"github.com/Somtiee/swaparc/internal/indexer"
	"github.com/Somtiee/swaparc/internal/infrastructure/cache"
	"github.com/Somtiee/swaparc/internal/infrastructure/queue"
	"github.com/Somtiee/swaparc/internal/infrastructure/storage"
	"github.com/Somtiee/swaparc/internal/pricing"
)

// ErrMissingStoreConfig is the one fatal startup condition: without the store
// there is nothing to index into.
var ErrMissingStoreConfig = errors.New("missing REDIS_ADDR in environment")

// AppContext holds all app dependencies
type AppContext struct {
	Config      *config.Config
	Log         *slog.Logger
	Store       *cache.RedisRepository
	Chain       *chain.Client
	Scanner     *indexer.Scanner
	Leaderboard *service.LeaderboardService
	Profiles    *service.ProfileService
	Broadcaster *ws.WebSocketBroadcaster

	archive   *storage.ClickHouseRepository
	publisher repository.SwapPublisher
}

// NewApp initializes the app context with all dependencies. startOverride,
// when non-nil, makes the scanner ignore the stored checkpoint (backfill).
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config, startOverride *uint64) (*AppContext, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrMissingStoreConfig
	}

	app := &AppContext{Config: cfg, Log: log}

	app.Store = cache.NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		time.Duration(cfg.SeenTxTTL)*time.Hour)
	if err := app.Store.Ping(ctx); err != nil {
		log.Warn("redis ping failed at startup, continuing", "addr", cfg.RedisAddr, "err", err)
	} else {
		log.Info("redis store initialized", "addr", cfg.RedisAddr)
	}

	chainClient, err := chain.NewClient(cfg.ChainRPCURL, cfg.ChainRPCFallbackURL, cfg.PoolAddress, log)
	if err != nil {
		return nil, err
	}
	app.Chain = chainClient
	log.Info("chain provider initialized", "rpc", cfg.ChainRPCURL, "fallback", cfg.ChainRPCFallbackURL != "")

	oracle := pricing.NewOracle(chainClient, pricing.NewCoinGeckoClient(), log)
	valuer := service.NewValuer(chainClient, oracle, log)
	writer := service.NewAggregateWriter(app.Store, log)
	app.Leaderboard = service.NewLeaderboardService(app.Store)
	app.Profiles = service.NewProfileService(app.Store)
	app.Broadcaster = ws.NewWebSocketBroadcaster()

	// Optional swap archive (ClickHouse)
	var archive repository.SwapArchive
	if cfg.ClickhouseAddr != "" {
		chRepo, err := storage.NewClickHouseRepository(storage.ClickHouseConfig{
			Addr:     cfg.ClickhouseAddr,
			Username: cfg.ClickhouseUsername,
			Password: cfg.ClickhousePassword,
			Timeout:  cfg.ClickhouseTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to ClickHouse, continuing without archive", "err", err)
		} else {
			app.archive = chRepo
			archive = chRepo
			log.Info("swap archive initialized", "addr", cfg.ClickhouseAddr)
		}
	}

	// Optional downstream event feed (Kafka)
	if len(cfg.KafkaBrokers) > 0 {
		app.publisher = queue.NewKafkaPublisher(queue.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		log.Info("kafka publisher initialized", "topic", cfg.KafkaTopic)
	}

	source := indexer.NewArcscanSource(arcscan.NewClient(cfg.ArcscanAPI, cfg.PoolAddress))
	app.Scanner = indexer.NewScanner(indexer.Options{
		Source:             source,
		Valuer:             valuer,
		Writer:             writer,
		Checkpoints:        app.Store,
		Seen:               app.Store,
		Archive:            archive,
		Publisher:          app.publisher,
		Height:             chainClient,
		Observer:           app.Broadcaster,
		StartBlockOverride: startOverride,
		Interval:           time.Duration(cfg.ScanInterval) * time.Millisecond,
		FlushTimeout:       time.Duration(cfg.FlushTimeout) * time.Millisecond,
		Log:                log,
	})

	return app, nil
}

// Cleanup performs graceful shutdown of all components
func (a *AppContext) Cleanup(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Log.Warn("error closing kafka publisher", "err", err)
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.Log.Warn("error closing clickhouse connection", "err", err)
		}
	}
	if a.Chain != nil {
		a.Chain.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("error closing redis client", "err", err)
		}
	}
	a.Log.Info("all resources cleaned up")
}
