package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/pennyfarthing/internal/config"
	"example.com/pennyfarthing/internal/luarules"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/web"
	"example.com/pennyfarthing/internal/ws"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := rules.NewRegistry(logger.Named("rules"))
	if err := rules.RegisterBuiltins(registry); err != nil {
		return err
	}
	if _, err := luarules.LoadDir(registry, cfg.RulesDir, logger.Named("lua")); err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if _, err := registry.Lookup(cfg.DefaultRuleset); err != nil {
		return fmt.Errorf("default ruleset: %w", err)
	}

	allow := cfg.AllowedOrigins()
	hub := ws.NewHub(registry, ws.Options{
		AllowOrigins:   allow,
		DefaultRuleset: cfg.DefaultRuleset,
		Animations:     cfg.Animations,
	}, logger.Named("ws"))
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	web.New(registry, logger.Named("web")).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors(allow, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP rereads the rules directory and pushes the new menu. The
	// registry closes each script a reload replaces.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if _, err := luarules.LoadDir(registry, cfg.RulesDir, logger.Named("lua")); err != nil {
				logger.Error("reload rules", zap.Error(err))
				continue
			}
			hub.AnnounceGames()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Addr),
			zap.Strings("origins", allow),
			zap.String("default_ruleset", cfg.DefaultRuleset),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
	}
	signal.Stop(hup)
	return nil
}

func cors(allow []string, next http.Handler) http.Handler {
	allowSet := map[string]struct{}{}
	for _, a := range allow {
		if a != "" {
			allowSet[a] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
