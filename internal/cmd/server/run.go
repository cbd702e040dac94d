package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/lazy-eggplant/vs.logger/internal/archive"
	"github.com/lazy-eggplant/vs.logger/internal/bridge"
	cfgpkg "github.com/lazy-eggplant/vs.logger/internal/config"
	httpserver "github.com/lazy-eggplant/vs.logger/internal/server/http"
	pebblestore "github.com/lazy-eggplant/vs.logger/internal/storage/pebble"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// Run starts the fan-out bridge and the HTTP server and blocks until ctx is
// cancelled or either component fails to start.
func Run(ctx context.Context, cfg cfgpkg.Config) error {
	// Layer a local signal context over the provided one so callers that
	// don't pass a signal-aware context still get clean shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logpkg.ApplyConfig(&cfg.Log)
	if err != nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
		logger.Warn("bad log config, using defaults", logpkg.Err(err))
	}

	logger.Info("starting vslog server",
		logpkg.Str("socket", cfg.Socket),
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("level", cfg.Log.Level),
	)

	br, err := bridge.New(cfg.Socket, bridge.NewRegistry(), logger)
	if err != nil {
		return err
	}

	var store *archive.Store
	if cfg.Archive {
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir: filepath.Join(cfg.DataDir, "archive"),
			Sync:    cfg.ArchiveSync,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		store, err = archive.Open(db)
		if err != nil {
			return err
		}
		br.SetArchive(store)
		logger.Info("archive enabled",
			logpkg.Str("dir", cfg.DataDir),
			logpkg.Uint64("last_seq", store.LastSeq()),
		)
	}

	hsrv := httpserver.New(br.Registry(), store, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := br.Run(sctx); err != nil && sctx.Err() == nil {
			logger.Error("bridge stopped", logpkg.Err(err))
			stop()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, cfg.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server stopped", logpkg.Err(err))
			stop()
		}
	}()

	<-sctx.Done()
	hsrv.Close()
	wg.Wait()
	logger.Info("server stopped")
	return nil
}
