// Command dbsetup installs the collections, validators and indexes
// of the document database. It is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/willemschots/tuffyestates/internal"
	"github.com/willemschots/tuffyestates/internal/db"
)

const setupTimeout = 60 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	// Flags default to the variables the server reads.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("failed to load .env", "error", err)
		return 1
	}

	fs := flag.NewFlagSet("dbsetup", flag.ContinueOnError)
	fs.SetOutput(w)
	url := fs.String("url", envOr("DB_URL", "mongodb://localhost:27017"), "MongoDB connection URL")
	name := fs.String("name", envOr("DB_NAME", "tuffyestates"), "database name")
	timeout := fs.Duration("timeout", setupTimeout, "maximum duration of the setup")

	err = fs.Parse(args)
	if err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(w, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}

	logger.Info("setting up database", "name", *name, "build", internal.CurrentBuild)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	gw := db.NewGateway(db.Config{URL: *url, Name: *name, RetryDelay: 5 * time.Second}, logger, db.Models()...)
	defer func() {
		err := gw.Close(context.Background())
		if err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	res, err := gw.Setup(ctx)
	if err != nil {
		logger.Error("failed to set up database", "error", err)
		return 1
	}

	logger.Info("database set up",
		"created", res.Created,
		"updated", res.Updated,
		"indexes", res.Indexes,
	)

	return 0
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
