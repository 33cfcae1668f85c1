package testdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/willemschots/tuffyestates/internal/db"
)

// URLEnv names the environment variable holding the MongoDB test server URL.
const URLEnv = "MONGO_TEST_URL"

// RunWhile provides a gateway to a fresh database while the provided test
// is executing. Collections, validators and indexes are installed. The
// database is dropped afterwards. Tests are skipped when no test server
// is configured.
func RunWhile(t *testing.T) *db.Gateway {
	t.Helper()

	url := os.Getenv(URLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping database test", URLEnv)
	}

	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	gw := db.NewGateway(db.Config{
		URL:        url,
		Name:       name,
		RetryDelay: time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), db.Models()...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := gw.Setup(ctx)
	if err != nil {
		t.Fatalf("failed to set up database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		database, err := gw.Connect(ctx)
		if err == nil {
			err = database.Drop(ctx)
		}
		if err != nil {
			t.Errorf("failed to drop database: %v", err)
		}

		err = gw.Close(ctx)
		if err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return gw
}
