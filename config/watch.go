package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"github.com/sagarc03/assetgate"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 200 * time.Millisecond

// Reload loads configuration again, builds a settings snapshot and publishes
// it to store. On any error the current snapshot is left in place.
func Reload(configFiles []string, flags *pflag.FlagSet, store *assetgate.SettingsStore) (*Config, error) {
	cfg, err := Load(configFiles, flags)
	if err != nil {
		return nil, err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("build settings: %w", err)
	}

	if err := store.Replace(settings); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Watcher reloads settings when a config file or the API keys file changes.
type Watcher struct {
	files []string
	flags *pflag.FlagSet
	store *assetgate.SettingsStore

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	targets map[string]struct{}
}

// Watch starts watching configFiles and the keys file named by cfg. The
// parent directories are watched so files replaced by rename are picked up.
func Watch(cfg *Config, configFiles []string, flags *pflag.FlagSet, store *assetgate.SettingsStore) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		files:   configFiles,
		flags:   flags,
		store:   store,
		fsw:     fsw,
		done:    make(chan struct{}),
		targets: make(map[string]struct{}),
	}

	if err := w.track(cfg); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) track(cfg *Config) error {
	paths := append([]string(nil), w.files...)
	if cfg != nil && cfg.Auth.APIKeys.Keys.File != "" {
		paths = append(paths, cfg.Auth.APIKeys.Keys.File)
	}
	if len(paths) == 0 {
		return errors.New("watch config: no files to watch")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		if _, ok := w.targets[abs]; ok {
			continue
		}
		if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch config %s: %w", p, err)
		}
		w.targets[abs] = struct{}{}
	}

	return nil
}

func (w *Watcher) isTarget(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.targets[abs]
	return ok
}

func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-w.done:
			timer.Stop()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) || !w.isTarget(event.Name) {
				continue
			}
			timer.Reset(reloadDelay)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "err", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Reload(w.files, w.flags, w.store)
	if err != nil {
		slog.Error("config reload rejected, keeping previous settings", "err", err)
		return
	}

	if err := w.track(cfg); err != nil {
		slog.Warn("failed to watch keys file", "err", err)
	}

	slog.Info("configuration reloaded", "api_keys", len(w.store.Current().APIKeys.Keys))
}
