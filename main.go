// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/db"
	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/handlers"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/poll"
	"github.com/danielhkuo/quickpoll/router"
)

const (
	eventQueueSize  = 1024
	shutdownTimeout = 5 * time.Second
)

// setupLogging picks a readable handler on a terminal and JSON otherwise
func setupLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	setupLogging()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the journal database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Connect the event publisher
	publisher, err := events.New(ctx, cfg)
	if err != nil {
		slog.Error("event publisher failed", "backend", cfg.EventsBackend, "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// the forwarder outlives the HTTP server so events from in-flight
	// requests are still published
	forwarder := events.NewForwarder(publisher, eventQueueSize)
	forwarderCtx, stopForwarder := context.WithCancel(context.Background())
	forwarderDone := make(chan struct{})
	go func() {
		defer close(forwarderDone)
		forwarder.Run(forwarderCtx)
	}()

	// Rebuild the store from the journal
	journal := db.NewJournal(dbConn)
	history, err := journal.Load(ctx)
	if err != nil {
		slog.Error("journal load failed", "error", err)
		os.Exit(1)
	}

	var store *poll.Store
	hub := events.NewHub(func(id uint64) (any, error) {
		return handlers.NewPollHandler(store).Snapshot(id)
	})

	store, err = poll.Restore(history,
		poll.WithJournal(journal),
		poll.WithListener(hub.Listener()),
		poll.WithListener(forwarder.Listener()),
	)
	if err != nil {
		slog.Error("journal replay failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Store restored",
		"polls", humanize.Comma(int64(store.PollCount())),
		"events", humanize.Comma(int64(len(history))),
	)

	// Create server
	server := &http.Server{
		Handler: middleware.CORS(router.NewRouter(store, hub, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}

	slog.Info("Listening", "port", cfg.Port, "events", cfg.EventsBackend)
	if err := serve(ctx, server, ln, hub.Shutdown); err != nil {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}

	// no handler is running any more; flush queued events before the
	// deferred publisher and database closes
	stopForwarder()
	<-forwarderDone
}

// serve runs server on ln until ctx is done, then shuts it down. It returns
// only after in-flight requests have finished or shutdownTimeout elapsed.
// beforeShutdown runs first, for connections Shutdown does not track.
func serve(ctx context.Context, server *http.Server, ln net.Listener, beforeShutdown func()) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		// Serve failed before any shutdown was requested
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if beforeShutdown != nil {
		beforeShutdown()
	}
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		server.Close()
	}

	if serveErr := <-serveErr; !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}
