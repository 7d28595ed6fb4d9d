package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/labeldesk/internal/domain"
)

// Viewer opens saved label files in a configured program or the system default
type Viewer struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
}

var _ domain.FileOpener = (*Viewer)(nil)

// archiveHandlers lists programs that show a ZIP archive's content on each platform
var archiveHandlers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"file-roller", "ark", "xdg-open"},
	"windows": {"explorer"},
}

// NewViewer creates a Viewer
func NewViewer(command string, args []string, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command: command,
		args:    args,
		logger:  logger,
		start:   startCommand,
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Open shows the file at path
func (v *Viewer) Open(path string) error {
	// Tier 1: User configured a specific viewer
	if v.command != "" {
		args := append(append([]string{}, v.args...), path)
		v.logger.Info("opening with configured viewer", "command", v.command, "args", args)
		if err := v.start(v.command, args...); err != nil {
			return fmt.Errorf("failed to start %s: %w", v.command, err)
		}
		return nil
	}

	// Tier 2: Archives go to an archive manager when one is installed
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		for _, handler := range archiveHandlers[runtime.GOOS] {
			if err := v.start(handler, path); err == nil {
				v.logger.Info("opened archive", "handler", handler, "path", path)
				return nil
			}
			v.logger.Debug("archive handler not available", "handler", handler)
		}
	}

	// Tier 3: System default (open/xdg-open/start)
	return v.openDefault(path)
}

// openDefault opens the file using the system default handler
func (v *Viewer) openDefault(path string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{path}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", path}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{path}
	}

	v.logger.Info("opening with system default", "os", runtime.GOOS, "path", path)

	if err := v.start(name, args...); err != nil {
		return fmt.Errorf("no program to open %s: %w", filepath.Base(path), err)
	}
	return nil
}
