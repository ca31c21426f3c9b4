package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/nexusshell/nexusshell/internal/core/security"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
	"github.com/nexusshell/nexusshell/internal/logger"
)

// ReloadSource resolves a plugin ID to the bytes, version, and sidecar
// needed to reload it, letting the watcher stay storage-agnostic.
type ReloadSource interface {
	Resolve(pluginID string) (wasmBytes []byte, version string, sidecar verify.Sidecar, metadata security.PluginMetadata, policy security.Policy, err error)
}

// Watcher monitors a directory of ".wasm" plugin artifacts and
// triggers a hot reload when a file's on-disk version is newer than
// the loaded one. A failed reload fires ReloadFailed and is logged. The
// previous version is unloaded before the new one is loaded and is not
// restored, so a failed load leaves the plugin unloaded.
type Watcher struct {
	host   *Host
	source ReloadSource
	dir    string
	fsw    *fsnotify.Watcher
	done   chan struct{}
}

// NewWatcher constructs a Watcher over dir, grounded on the teacher's
// fsnotify log-tail watcher for its Add/Events/Errors loop.
func NewWatcher(host *Host, source ReloadSource, dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{host: host, source: source, dir: dir, fsw: fsw, done: make(chan struct{})}, nil
}

// Run blocks, dispatching reloads until ctx is canceled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".wasm") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pluginID := strings.TrimSuffix(filepath.Base(event.Name), ".wasm")
			w.reload(ctx, pluginID)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("plugin watcher error", "error", err.Error(), "dir", w.dir)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) reload(ctx context.Context, pluginID string) {
	currentVersion, loaded := w.host.Version(pluginID)

	wasmBytes, newVersion, sidecar, metadata, policy, err := w.source.Resolve(pluginID)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		logger.Warn("failed to resolve reload source", "plugin_id", pluginID, "error", err.Error())
		return
	}

	if loaded && !isNewerVersion(currentVersion, newVersion) {
		return
	}

	fire(pluginID, "before_reload", w.host.hooks.BeforeReload)

	if loaded {
		if unloadErr := w.host.Unload(ctx, pluginID); unloadErr != nil {
			fire(pluginID, "reload_failed", w.host.hooks.ReloadFailed)
			logger.Warn("hot reload failed to unload previous version", "plugin_id", pluginID, "error", unloadErr.Error())
			return
		}
	}

	if loadErr := w.host.Load(ctx, pluginID, wasmBytes, metadata, policy, sidecar, newVersion); loadErr != nil {
		fire(pluginID, "reload_failed", w.host.hooks.ReloadFailed)
		logger.Warn("hot reload failed to load new version", "plugin_id", pluginID, "error", loadErr.Error())
		return
	}

	logger.Info("plugin hot reloaded", "plugin_id", pluginID, "version", newVersion)
}
