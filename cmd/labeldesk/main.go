package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/labeldesk/internal/adapter"
	"github.com/mmcdole/labeldesk/internal/adapter/labelserver"
	"github.com/mmcdole/labeldesk/internal/adapter/sheet"
	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/labels"
	"github.com/mmcdole/labeldesk/internal/orders"
	"github.com/mmcdole/labeldesk/internal/store"
	"github.com/mmcdole/labeldesk/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labeldesk",
		Short: "Pick orders and fetch their shipping labels from the terminal",
		Long: `labeldesk shows the queue of orders awaiting shipment, lets you filter and
select them, and requests their CDEK shipping labels from the label server.

Run "labeldesk setup" once to point it at your server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUI,
	}

	root.AddCommand(newSetupCmd(), newLabelsCmd(), newExportCmd())
	return root
}

// environment is the loaded config and logger shared by every command
type environment struct {
	cfg    *adapter.Config
	logger *slog.Logger
	closer io.Closer
}

func (e *environment) Close() {
	_ = e.closer.Close()
}

func loadEnvironment() (*environment, error) {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closer = io.NopCloser(nil)
	}
	slog.SetDefault(logger)

	return &environment{cfg: cfg, logger: logger, closer: closer}, nil
}

// services holds everything built from the config
type services struct {
	store       *store.KVStore
	registry    *labels.Registry
	orders      *orders.Service
	coordinator *labels.Coordinator
}

func (s *services) Close() error {
	return s.store.Close()
}

// unconfiguredClient answers label requests when no server URL is set
type unconfiguredClient struct{}

func (unconfiguredClient) RequestLabels(context.Context, []string) (*domain.LabelResponse, error) {
	return nil, domain.ErrNotConfigured
}

func newLabelClient(cfg *adapter.Config, logger *slog.Logger) *labelserver.Client {
	return labelserver.NewClient(labelserver.Options{
		BaseURL:       cfg.Server.URL,
		LabelsPath:    cfg.Server.LabelsPath,
		OrdersPath:    cfg.Server.OrdersPath,
		CSRFToken:     cfg.Server.CSRFToken,
		SessionCookie: cfg.Server.SessionCookie,
		Timeout:       cfg.Server.Timeout,
	}, logger)
}

func newServices(cfg *adapter.Config, logger *slog.Logger) (*services, error) {
	kv, err := store.Open(adapter.ExpandPath(cfg.DataDir), cfg.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	var (
		client  domain.LabelClient = unconfiguredClient{}
		sources []domain.OrderSource
	)
	if cfg.ServerConfigured() {
		server := newLabelClient(cfg, logger)
		client = server
		if cfg.Orders.FromServer {
			sources = append(sources, server)
		}
	}
	for _, f := range cfg.Orders.Files {
		sources = append(sources, sheet.NewFileSource(adapter.ExpandPath(f), logger))
	}

	registry := labels.NewRegistry(kv, logger)
	saver := labels.NewDirSaver(nil, cfg.Labels.DownloadDir)

	return &services{
		store:       kv,
		registry:    registry,
		orders:      orders.NewService(sources, logger),
		coordinator: labels.NewCoordinator(client, registry, saver, logger),
	}, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	env.logger.Info("starting labeldesk", "version", Version)

	if !env.cfg.IsConfigured() {
		fmt.Fprintln(cmd.OutOrStdout(), "labeldesk has no order source configured yet.")
		return newSetupFlow(cmd.InOrStdin(), cmd.OutOrStdout()).Run(env.cfg)
	}

	svc, err := newServices(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	var clip domain.Clipboard
	if adapter.ClipboardAvailable() {
		clip = adapter.SystemClipboard{}
	}

	model := tui.NewModel(tui.Options{
		Orders:         svc.orders,
		Registry:       svc.registry,
		Coordinator:    svc.coordinator,
		Clipboard:      clip,
		Opener:         adapter.NewViewer(env.cfg.Labels.Viewer, env.cfg.Labels.ViewerArgs, env.logger),
		ExportDir:      adapter.ExpandPath(env.cfg.Labels.DownloadDir),

		OpenAfterDownload: env.cfg.Labels.OpenAfterDownload,
		MessageTimeout:    env.cfg.UI.MessageTimeout,
		DefaultStatus:     domain.ParseDownloadStatus(env.cfg.UI.DefaultStatus),
		Logger:            env.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	env.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		env.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	env.logger.Info("shutting down")
	return nil
}
