package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 15 * time.Second

// Client owns a MongoDB connection bound to one database.
type Client struct {
	client       *mongo.Client
	databaseName string
	timeout      time.Duration
}

type clientOpts struct {
	timeout       time.Duration
	maxPoolSize   uint64
	traceProvider trace.TracerProvider
}

// ClientOpt configures New.
type ClientOpt func(opts *clientOpts)

// WithTimeout bounds connect, ping and disconnect.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}

// WithMaxPoolSize overrides the driver connection pool size.
func WithMaxPoolSize(n uint64) ClientOpt {
	return func(opts *clientOpts) {
		opts.maxPoolSize = n
	}
}

// WithTraceProvider instruments driver commands with OpenTelemetry spans.
func WithTraceProvider(traceProvider trace.TracerProvider) ClientOpt {
	return func(opts *clientOpts) {
		opts.traceProvider = traceProvider
	}
}

// New connects to connString and pings the primary.
func New(connString string, databaseName string, opts ...ClientOpt) (*Client, error) {
	op := &clientOpts{
		timeout:     defaultTimeout,
		maxPoolSize: 100,
	}
	for _, fn := range opts {
		fn(op)
	}

	mongoOpts := mongooptions.Client().ApplyURI(connString)
	// Credential reads must observe the write that just happened in the same issuance.
	mongoOpts.ReadPreference = readpref.Primary()
	mongoOpts.MaxPoolSize = lo.ToPtr(op.maxPoolSize)

	if op.traceProvider != nil {
		mongoOpts.Monitor = otelmongo.NewMonitor(otelmongo.WithTracerProvider(op.traceProvider))
	}

	ctx, cancel := context.WithTimeout(context.Background(), op.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client:       client,
		databaseName: databaseName,
		timeout:      op.timeout,
	}, nil
}

// Database returns the bound database handle.
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.databaseName)
}

// Health pings the primary.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects, treating an already-closed client as success.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		if errors.Is(err, mongo.ErrClientDisconnected) {
			return nil
		}
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
