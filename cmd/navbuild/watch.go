package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gorustyt/navbuild/config"
	"github.com/gorustyt/navbuild/metrics"
	"github.com/gorustyt/navbuild/navbuild"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Build       BuildCmd      `embed:""`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (overrides metrics.addr)"`
	Debounce    time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
}

func (w *WatchCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := w.load(g)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	addr := w.MetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("addr", addr))
	}

	rebuild := func() {
		current, err := w.load(g)
		if err != nil {
			log.Error("configuration rejected, keeping watch", zap.Error(err))
			return
		}
		opts := append(current.BuilderOptions(), navbuild.WithLogger(log), navbuild.WithRecorder(recorder))
		if err := runBuild(current, navbuild.NewBuilder(opts...), log); err != nil {
			log.Error("rebuild failed", zap.Error(err))
		}
	}

	paths := []string{cfg.Input.Path}
	if cfgPath := watchedConfigPath(g.Config); cfgPath != "" {
		paths = append(paths, cfgPath)
	}
	fw, err := newFileWatcher(paths, w.Debounce, rebuild, log)
	if err != nil {
		return err
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer notify.Close()
	for _, dir := range fw.dirs() {
		if err := notify.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	rebuild()
	log.Info("watching for changes", zap.Strings("files", paths))
	fw.run(ctx, notify.Events, notify.Errors)
	return nil
}

// load reads the config and applies the build flags.
func (w *WatchCmd) load(g *Globals) (*config.File, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := w.Build.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Input.Path == "" {
		return nil, errors.New("no input mesh: pass -i or set input.path")
	}
	return cfg, nil
}

func watchedConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.DefaultPath
	}
	return ""
}

// fileWatcher turns change events on a set of files into debounced rebuilds.
// Rebuilds run on the goroutine that calls run, one at a time.
type fileWatcher struct {
	files    map[string]bool
	debounce time.Duration
	rebuild  func()
	log      *zap.Logger
}

func newFileWatcher(paths []string, debounce time.Duration, rebuild func(), log *zap.Logger) (*fileWatcher, error) {
	fw := &fileWatcher{
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		rebuild:  rebuild,
		log:      log,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		fw.files[abs] = true
	}
	return fw, nil
}

// dirs returns the directories to watch. Watching the parent directory
// keeps working across editors that replace files on save.
func (fw *fileWatcher) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for f := range fw.files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}

func (fw *fileWatcher) relevant(ev fsnotify.Event) bool {
	abs, err := filepath.Abs(ev.Name)
	if err != nil || !fw.files[abs] {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (fw *fileWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !fw.relevant(ev) {
				continue
			}
			fw.log.Debug("change detected", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(fw.debounce)
		case err, ok := <-errs:
			if !ok {
				return
			}
			fw.log.Error("watcher error", zap.Error(err))
		case <-timer.C:
			fw.log.Info("rebuilding navigation mesh")
			fw.rebuild()
		}
	}
}
