package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"bidwatch-engine/internal/classify"
	"bidwatch-engine/internal/config"
	"bidwatch-engine/internal/events"
	"bidwatch-engine/internal/httpapi"
	"bidwatch-engine/internal/ledger"
	"bidwatch-engine/internal/runner"
	"bidwatch-engine/internal/scrape"
	"bidwatch-engine/internal/scrape/util"
	"bidwatch-engine/internal/secrets"
	"bidwatch-engine/internal/sink"
	"bidwatch-engine/internal/store"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	dataDir := os.Getenv("BIDWATCH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// The ledger and the workbook are append-only files with no locking of
	// their own, so refuse to start beside another engine instance.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock: %v", err)
	}
	if !locked {
		log.Fatal("another engine instance holds the lock")
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config invalid (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	apiKey, err := secrets.GetAPIKey(cfg.Classify.APIKeyEnv)
	if err != nil {
		log.Fatalf("classify credentials: %v", err)
	}

	db, err := store.Open(filepath.Join(dataDir, "bidwatch.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	workbook, err := sink.Open(filepath.Join(dataDir, cfg.Sink.Workbook), cfg.Sink.Sheets)
	if err != nil {
		log.Fatalf("sink workbook: %v", err)
	}

	hub := events.NewHub()
	limiter := util.NewHostLimiter(cfg.Source.HostReqPerSec, cfg.Source.HostBurst)

	run := &runner.Runner{
		Cfg:    cfg,
		Client: classify.New(cfg.Classify.BaseURL, apiKey, cfg.PollInterval(), cfg.Classify.MaxAttempts),
		Ledger: ledger.New(filepath.Join(dataDir, "processed_bids.txt")),
		Source: scrape.New(scrape.Config{
			ListingURL: cfg.Source.ListingURL,
			MaxPages:   cfg.Source.MaxPages,
			Timeout:    cfg.RequestTimeout(),
		}, limiter),
		Sink: workbook,
		DB:   db,
		Hub:  hub,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		stats, err := run.RunOnce(ctx)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		log.Printf("run finished seen=%d dispatched=%d", stats.Seen, stats.Dispatched)
		return
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		RunStatus:   run.Status,
		RunOnce:     run.RunOnce,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.Recover, httpapi.Cors, httpapi.AccessLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return run.Start(ctx, time.Duration(cfg.Schedule.RunSeconds)*time.Second)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
