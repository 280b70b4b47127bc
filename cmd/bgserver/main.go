// Command bgserver runs the HTTP API and the TCP session protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/bgrules/internal/config"
	"github.com/yourusername/bgrules/internal/obslog"
	"github.com/yourusername/bgrules/pkg/api"
	"github.com/yourusername/bgrules/pkg/external"
	"github.com/yourusername/bgrules/pkg/suggest"
)

const version = "0.2.0"

func main() {
	configPath := flag.String("config", os.Getenv("BG_CONFIG"), "Path to YAML config (environment only when empty)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	showEnv := flag.Bool("env", false, "List environment variables and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bgserver v%s\n", version)
		return
	}
	if *showEnv {
		fmt.Println(config.Usage())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := obslog.Init(obslog.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("stopped")
}

// serve runs the enabled servers until ctx is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var s suggest.Suggester
	if cfg.Suggest.URL != "" {
		client := suggest.NewClient(cfg.Suggest.URL,
			suggest.WithTimeout(cfg.Suggest.Timeout),
			suggest.WithRetry(cfg.Suggest.Retry),
			suggest.WithMaxConnsPerHost(cfg.Suggest.MaxConnsPerHost),
			suggest.WithLogger(logger.Named("suggest")),
		)
		defer client.Close()
		s = client
		logger.Info("suggestion service configured", zap.String("url", cfg.Suggest.URL))
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Enabled {
		srv := api.NewServer(api.ServerConfig{
			Host:           cfg.HTTP.Host,
			Port:           cfg.HTTP.Port,
			ReadTimeout:    cfg.HTTP.ReadTimeout,
			WriteTimeout:   cfg.HTTP.WriteTimeout,
			IdleTimeout:    cfg.HTTP.IdleTimeout,
			MaxFastWorkers: cfg.HTTP.MaxFastWorkers,
			MaxSlowWorkers: cfg.HTTP.MaxSlowWorkers,
		}, version, s, logger.Named("api"))
		g.Go(func() error { return srv.Run(ctx, cfg.HTTP.ShutdownGrace) })
	}

	if cfg.Protocol.Enabled {
		opts := external.DefaultServerOptions()
		opts.Port = cfg.Protocol.Port
		opts.PromptEnabled = cfg.Protocol.Prompt
		opts.SuggestTimeout = cfg.Suggest.Timeout
		srv := external.NewServer(opts, s, logger.Named("protocol"))
		g.Go(func() error { return srv.Run(ctx) })
	}

	return g.Wait()
}
