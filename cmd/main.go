package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fjod/food-cart/internal/catalog"
	h "github.com/fjod/food-cart/internal/http"
	"github.com/fjod/food-cart/internal/publisher"
	"github.com/fjod/food-cart/internal/service"
	"github.com/fjod/food-cart/internal/storage"
	"github.com/fjod/food-cart/pkg/config"
	"github.com/fjod/food-cart/pkg/logger"
	"github.com/fjod/food-cart/pkg/shutdown"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "food-cart: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Service: "food-cart",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	kv, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	menu, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}

	opts := []service.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewCheckoutPublisher(cfg.CheckoutTopic, cfg.KafkaBrokers...)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("failed to close checkout publisher", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(pub))
		log.Info("checkout events enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.CheckoutTopic))
	}

	shop, err := service.New(ctx, kv, menu, log, opts...)
	if err != nil {
		return err
	}

	handler := h.NewCartHandler(shop, cfg.RequestTimeout, log)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.NewRouter(handler, cfg.RequestTimeout, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("food cart listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KV, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("using in-memory storage, state is lost on restart")
		return storage.NewMemoryKV(), func() {}, nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				log.Warn("failed to disconnect from MongoDB", zap.Error(err))
			}
		}
		return storage.NewBreakerKV(storage.NewMongoKV(db), "mongo", log), closeFn, nil

	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}
		kv := storage.NewRedisKV(client, cfg.StorageKeyPrefix, 0)
		return storage.NewBreakerKV(kv, "redis", log), closeFn, nil
	}
}

func openCatalog(ctx context.Context, cfg *config.Config, log *zap.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.Default(), nil
	}
	menu, err := catalog.Load(ctx, cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded", zap.String("path", cfg.CatalogDBPath), zap.Int("dishes", len(menu.Dishes())))
	return menu, nil
}
