package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/willemschots/tuffyestates/internal/schema"
)

// Config configures the connection to the database.
type Config struct {
	URL  string
	Name string
	// RetryDelay is how long to wait before the single connection retry.
	RetryDelay time.Duration
}

// DialFunc opens a connected client.
type DialFunc func(ctx context.Context, url string) (*mongo.Client, error)

// Gateway owns the single connection to the document database.
// It is safe for concurrent use.
type Gateway struct {
	cfg    Config
	logger *slog.Logger
	defs   map[string]ModelDef
	order  []ModelDef

	mu       sync.Mutex
	client   *mongo.Client
	database *mongo.Database
	models   map[string]*Model

	// Dial connects to the database. Exposed for testing purposes.
	Dial DialFunc
	// Sleep waits before retrying. Exposed for testing purposes.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway creates a gateway for the given models. It does not connect.
func NewGateway(cfg Config, logger *slog.Logger, defs ...ModelDef) *Gateway {
	byName := make(map[string]ModelDef, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	return &Gateway{
		cfg:    cfg,
		logger: logger,
		defs:   byName,
		order:  defs,
		models: make(map[string]*Model, len(defs)),
		Dial:   Dial,
		Sleep:  sleep,
	}
}

// Connect returns the database handle, connecting first if necessary.
// A failed first attempt is retried exactly once after the configured delay.
// Once connected, subsequent calls return the same handle.
func (g *Gateway) Connect(ctx context.Context) (*mongo.Database, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.connect(ctx)
}

func (g *Gateway) connect(ctx context.Context) (*mongo.Database, error) {
	if g.database != nil {
		return g.database, nil
	}

	client, err := g.Dial(ctx, g.cfg.URL)
	if err != nil {
		g.logger.Warn("database not available, retrying", "delay", g.cfg.RetryDelay, "error", err)

		err = g.Sleep(ctx, g.cfg.RetryDelay)
		if err != nil {
			return nil, err
		}

		client, err = g.Dial(ctx, g.cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	g.logger.Info("connected to database", "name", g.cfg.Name)

	g.client = client
	g.database = client.Database(g.cfg.Name)

	return g.database, nil
}

// Model returns the named model, connecting first if necessary.
func (g *Gateway) Model(ctx context.Context, name string) (*Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if m, ok := g.models[name]; ok {
		return m, nil
	}

	def, ok := g.defs[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}

	database, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Coll:    database.Collection(def.Name),
		checker: schema.NewChecker(def.Resource, schema.InStorage),
	}
	g.models[name] = m

	return m, nil
}

// Close disconnects from the database if a connection was made.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}

	err := g.client.Disconnect(ctx)
	g.client = nil
	g.database = nil
	g.models = make(map[string]*Model, len(g.defs))

	return err
}

// Dial connects to the database at url and verifies the connection.
func Dial(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, errors.Join(err, client.Disconnect(ctx))
	}

	return client, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
