// Package main wires configuration, logging, the encryption key, the
// credential store and the authentication service, then runs the
// interactive shell on stdin/stdout.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/atinyakov/PassKeeper/internal/config"
	"github.com/atinyakov/PassKeeper/internal/crypto"
	"github.com/atinyakov/PassKeeper/internal/db"
	"github.com/atinyakov/PassKeeper/internal/keymanager"
	"github.com/atinyakov/PassKeeper/internal/logger"
	"github.com/atinyakov/PassKeeper/internal/repository"
	"github.com/atinyakov/PassKeeper/internal/service"
	"github.com/atinyakov/PassKeeper/internal/shell"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("PassKeeper %s (built %s)\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	key, err := keymanager.LoadOrCreateKey(options.KeyPath)
	if err != nil {
		zapLogger.Fatal("cannot load encryption key", zap.String("path", options.KeyPath), zap.Error(err))
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		zapLogger.Fatal("cannot build cipher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// A store that failed to open is still handed to the shell; its
	// operations report the failure instead of crashing.
	store, err := repository.Open(options.DatabasePath, cipher, zapLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: credential store is unavailable:", err)
	}
	defer func() {
		stop()
		_ = store.Close()
	}()

	if conn := store.DB(); conn != nil {
		if removed, err := db.PurgeOrphanItems(ctx, conn); err != nil {
			zapLogger.Error("failed to purge orphan items", zap.Error(err))
		} else if removed > 0 {
			zapLogger.Info("purged orphan items", zap.Int64("removed", removed))
		}
		if options.CleanInterval > 0 {
			db.StartOrphanCleaner(ctx, conn, options.CleanInterval, zapLogger)
		}
	}

	auth := service.NewAuthService(store, zapLogger)
	sh := shell.New(auth, store, os.Stdin, os.Stdout, zapLogger)
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
