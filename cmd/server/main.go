package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/joho/godotenv"

	"github.com/nbeney/scratch-tool/internal/cache"
	"github.com/nbeney/scratch-tool/internal/config"
	"github.com/nbeney/scratch-tool/internal/mirror"
	"github.com/nbeney/scratch-tool/internal/scratchapi"
)

func main() {
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", "", "listen address (overrides config)")
		configPath = flag.String("config", "scratchtool.yaml", "config file path")
		noCache    = flag.Bool("no-cache", false, "run without the fetch cache")
		archiveDir = flag.String("archive-dir", "", "directory for packed archives (default a temp dir)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("config not found (%s); using defaults", *configPath)
		} else {
			logger.Fatalf("load config: %v", err)
		}
	}
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	var store *cache.Store
	if !*noCache && !cfg.Cache.Disabled {
		store, err = cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			logger.Printf("fetch cache disabled: %v", err)
			store = nil
		} else {
			defer store.Close()
			logger.Printf("fetch cache at %s (ttl %s)", cfg.Cache.Path, cfg.Cache.TTL())
		}
	}

	var mir *mirror.Mirror
	if cfg.Mirror.Enabled {
		client, err := mirror.NewS3Client(mirror.S3Options{
			Endpoint:  cfg.Mirror.Endpoint,
			Region:    cfg.Mirror.Region,
			Bucket:    cfg.Mirror.Bucket,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			UseSSL:    cfg.Mirror.UseSSL,
		})
		if err != nil {
			logger.Fatalf("mirror enabled but misconfigured: %v", err)
		}
		mir = mirror.New(client, cfg.Mirror.Prefix, cfg.Mirror.Workers, cfg.Mirror.QueueCapacity, logger)
		defer func() {
			mir.Close()
			st := mir.Stats()
			logger.Printf("mirror drained: uploaded=%d failed=%d dropped=%d", st.UploadedTotal, st.FailedTotal, st.DroppedTotal)
		}()
		logger.Printf("mirroring archives to bucket %s (prefix %s)", cfg.Mirror.Bucket, cfg.Mirror.Prefix)
	}

	docs, err := lru.New[int64, []byte](cfg.Server.DocCacheSize)
	if err != nil {
		logger.Fatalf("doc cache: %v", err)
	}

	dir := *archiveDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "scratchtool-archives-")
		if err != nil {
			logger.Fatalf("archive dir: %v", err)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Fatalf("archive dir: %v", err)
	}

	app := newApplication(scratchapi.New(), store, docs, mir, dir, cfg.Fetch.AssetWorkers, logger)

	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
