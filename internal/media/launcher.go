package media

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/debuglog"
)

// BuiltinScheme prefixes image references that only exist inside plx.
const BuiltinScheme = "builtin://"

var (
	ErrNoViewer     = errors.New("no image viewer available")
	ErrBuiltinImage = errors.New("built-in image has no file to open")
	ErrEmptyRef     = errors.New("empty image reference")
)

// Launcher opens image references in an external viewer.
type Launcher struct {
	viewer   string
	registry *ViewerRegistry
	start    func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	return newLauncher(&cfg.Media, runtime.GOOS, exec.LookPath)
}

func newLauncher(cfg *config.MediaConfig, goos string, lookPath func(string) (string, error)) *Launcher {
	registry, err := NewViewerRegistry(goos)
	if err != nil {
		debuglog.Warnf("media: %v", err)
		registry = &ViewerRegistry{viewers: map[string]ViewerDefinition{}, goos: goos}
	}

	l := &Launcher{registry: registry, start: startDetached}
	for _, name := range candidates(cfg, goos) {
		if _, err := lookPath(registry.Executable(name)); err == nil {
			l.viewer = name
			break
		}
	}
	debuglog.Debugf("media: image viewer %q on %s", l.viewer, goos)
	return l
}

// candidates lists the configured viewers for goos, then the configured
// default opener, then the platform's own handler.
func candidates(cfg *config.MediaConfig, goos string) []string {
	var names []string
	switch goos {
	case "darwin":
		names = append(names, cfg.Darwin...)
	case "windows":
		names = append(names, cfg.Windows...)
	default:
		names = append(names, cfg.Linux...)
	}
	if cfg.DefaultOpener != "" {
		names = append(names, cfg.DefaultOpener)
	}
	return append(names, platformOpener(goos))
}

func platformOpener(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// Viewer reports the selected viewer, empty when none was found.
func (l *Launcher) Viewer() string {
	return l.viewer
}

// Open shows ref, a URL or a local file path, in the selected viewer.
func (l *Launcher) Open(ref string) error {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ErrEmptyRef
	case strings.HasPrefix(ref, BuiltinScheme):
		return ErrBuiltinImage
	case l.viewer == "":
		return ErrNoViewer
	}

	if !isRemote(ref) {
		if _, err := os.Stat(ref); err != nil {
			return fmt.Errorf("image %s: %w", ref, err)
		}
	}

	cmd, err := l.registry.Command(l.viewer, ref)
	if err != nil {
		return err
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.viewer, err)
	}
	return nil
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// startDetached starts a GUI viewer and reaps it in the background.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
