package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"touristid/internal/audit"
	credstore "touristid/internal/credential/store"
	"touristid/internal/identity"
	"touristid/internal/identity/keystore"
	"touristid/internal/issuance/service"
	"touristid/internal/issuance/tracker"
	"touristid/internal/platform/config"
	"touristid/internal/platform/database"
	"touristid/internal/platform/health"
	"touristid/internal/platform/kafka/producer"
	"touristid/internal/platform/mongodb"
	"touristid/internal/platform/redis"
	"touristid/migrations"
	"touristid/pkg/platform/circuit"
)

// backends holds the storage and messaging adapters selected by config.
type backends struct {
	credentials service.CredentialStore
	keys        identity.KeyStore
	issuances   service.IssuanceStore
	auditStore  audit.Store

	// trackerSweeper is set when issuances live in process memory.
	trackerSweeper sweeper

	redis   *redis.Client
	closers []func() error
}

// Close releases connections in reverse order of acquisition.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func openBackends(ctx context.Context, cfg config.Server, tp trace.TracerProvider, checks *health.Handler, log *slog.Logger) (*backends, error) {
	b := &backends{}
	if err := b.open(ctx, cfg, tp, checks, log); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) open(ctx context.Context, cfg config.Server, tp trace.TracerProvider, checks *health.Handler, log *slog.Logger) error {
	if needsRedis(cfg) {
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if client == nil {
			return errors.New("REDIS_URL is required for the redis key store or tracker")
		}
		b.redis = client
		b.closers = append(b.closers, client.Close)
		checks.RegisterCheck("redis", client.Health)
	}

	switch cfg.CredentialStore {
	case config.BackendMemory:
		b.credentials = credstore.NewInMemory()
	case config.BackendPostgres:
		pool, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if pool == nil {
			return errors.New("DATABASE_URL is required for the postgres credential store")
		}
		b.closers = append(b.closers, pool.Close)
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		checks.RegisterCheck("postgres", pool.Health)
		b.credentials = credstore.NewPostgres(pool.DB())
	case config.BackendMongoDB:
		if cfg.Mongo.URI == "" {
			return errors.New("MONGODB_URI is required for the mongodb credential store")
		}
		opts := []mongodb.ClientOpt{mongodb.WithTimeout(cfg.Mongo.Timeout)}
		if cfg.Mongo.MaxPoolSize > 0 {
			opts = append(opts, mongodb.WithMaxPoolSize(uint64(cfg.Mongo.MaxPoolSize)))
		}
		if tp != nil {
			opts = append(opts, mongodb.WithTraceProvider(tp))
		}
		client, err := mongodb.New(cfg.Mongo.URI, cfg.Mongo.Database, opts...)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		checks.RegisterCheck("mongodb", client.Health)
		mongoStore := credstore.NewMongo(client.Database())
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return err
		}
		b.credentials = mongoStore
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q", cfg.CredentialStore)
	}

	switch cfg.KeyStore {
	case config.BackendMemory:
		b.keys = keystore.NewMemory()
	case config.BackendRedis:
		b.keys = keystore.NewRedis(b.redis.Client)
	default:
		return fmt.Errorf("unknown KEY_STORE %q", cfg.KeyStore)
	}

	switch cfg.TrackerStore {
	case config.BackendMemory:
		memTracker := tracker.NewInMemory(tracker.DefaultTTL)
		b.issuances = memTracker
		b.trackerSweeper = memTracker
	case config.BackendRedis:
		b.issuances = tracker.NewRedis(b.redis.Client, tracker.DefaultTTL)
	default:
		return fmt.Errorf("unknown TRACKER_STORE %q", cfg.TrackerStore)
	}

	if cfg.Kafka.Brokers == "" {
		b.auditStore = audit.NewLogStore(log)
		return nil
	}
	prod, err := producer.New(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	b.closers = append(b.closers, prod.Close)
	checks.RegisterCheck("kafka", prod.Health)
	b.auditStore = audit.NewFallbackStore(
		audit.NewKafkaStore(prod, cfg.Kafka.AuditTopic),
		audit.NewLogStore(log),
		circuit.New("audit-kafka"),
		log,
	)
	log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	return nil
}

func needsRedis(cfg config.Server) bool {
	return cfg.KeyStore == config.BackendRedis || cfg.TrackerStore == config.BackendRedis
}
