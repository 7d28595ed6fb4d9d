package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/labeldesk/internal/adapter"
	"github.com/mmcdole/labeldesk/internal/adapter/sheet"
	"github.com/mmcdole/labeldesk/internal/domain"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.xlsx")
	require.NoError(t, sheet.Export(path, []domain.Order{
		{Shop: "Main", PostingNumber: "P-1", SKU: "MUG", ProductName: "Mug", Quantity: 1, TrackingNumber: "TRK0001", Warehouse: "Moscow"},
		{Shop: "Main", PostingNumber: "P-2", SKU: "CUP", ProductName: "Cup", Quantity: 2, TrackingNumber: "TRK0002", Warehouse: "Kazan"},
		{Shop: "Main", PostingNumber: "P-3", SKU: "PLT", ProductName: "Plate", Quantity: 3, TrackingNumber: "TRK0003", Warehouse: "Moscow"},
	}))
	return path
}

func fileServices(t *testing.T, files ...string) *services {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.DataDir = ""
	cfg.Server.URL = ""
	cfg.Orders.Files = files
	cfg.Labels.DownloadDir = t.TempDir()

	svc, err := newServices(cfg, adapter.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"setup", "labels", "export"})
	assert.Equal(t, Version, root.Version)
}

func TestNewServices_WithoutServer(t *testing.T) {
	svc := fileServices(t, writeWorkbook(t))

	assert.Equal(t, []string{"queue.xlsx"}, svc.orders.Sources())

	_, err := svc.coordinator.Request(context.Background(), []string{"TRK0001"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, svc.registry.List())
}

func TestLabelsListAndClear(t *testing.T) {
	svc := fileServices(t)
	_, err := svc.registry.MarkRequested([]string{"T1", "T2"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, listLabels(&out, svc.registry))
	assert.Equal(t, "T1\nT2\n", out.String())

	out.Reset()
	require.NoError(t, clearLabels(strings.NewReader("n\n"), &out, svc.registry, false))
	assert.Contains(t, out.String(), "Cancelled")
	assert.Len(t, svc.registry.List(), 2)

	out.Reset()
	require.NoError(t, clearLabels(strings.NewReader("y\n"), &out, svc.registry, false))
	assert.Contains(t, out.String(), "Forgot 2 requested labels")
	assert.Empty(t, svc.registry.List())

	out.Reset()
	require.NoError(t, clearLabels(strings.NewReader(""), &out, svc.registry, true))
	assert.Contains(t, out.String(), "No requested labels")
}

func TestGetLabels_DeduplicatesArgs(t *testing.T) {
	svc := fileServices(t)

	var out bytes.Buffer
	err := getLabels(context.Background(), &out, svc.coordinator, []string{"T1", " T1 ", ""})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, out.String())
}

func TestRunExport_AppliesFilters(t *testing.T) {
	svc := fileServices(t, writeWorkbook(t))
	_, err := svc.registry.MarkRequested([]string{"TRK0003"})
	require.NoError(t, err)

	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	opts := exportOptions{status: "not_downloaded", filters: []string{"Склад=mosc"}}

	var out bytes.Buffer
	require.NoError(t, runExport(context.Background(), &out, svc, opts, "", dir, now))

	path := filepath.Join(dir, "orders_Main_20240501_100000.xlsx")
	assert.Contains(t, out.String(), "Exported 1 orders to "+path)

	got, _, err := sheet.Import(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TRK0001", got[0].TrackingNumber)
}

func TestRunExport_Errors(t *testing.T) {
	svc := fileServices(t, writeWorkbook(t))
	dir := t.TempDir()

	tests := []struct {
		name string
		opts exportOptions
		want string
	}{
		{"malformed filter", exportOptions{filters: []string{"warehouse"}}, "expected column=value"},
		{"unknown column", exportOptions{filters: []string{"---=x"}}, "unknown column"},
		{"nothing visible", exportOptions{filters: []string{"sku=nothing"}}, "no orders match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runExport(context.Background(), &bytes.Buffer{}, svc, tt.opts, "", dir, time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunExport_NoSources(t *testing.T) {
	svc := fileServices(t)

	err := runExport(context.Background(), &bytes.Buffer{}, svc, exportOptions{}, "", t.TempDir(), time.Now())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func newTestFlow(input string) (*setupFlow, *bytes.Buffer, *adapter.Config) {
	out := &bytes.Buffer{}
	f := newSetupFlow(strings.NewReader(input), out)
	secrets := []string{"cookie-value", "csrf-value"}
	f.readSecret = func() (string, error) {
		if len(secrets) == 0 {
			return "", nil
		}
		s := secrets[0]
		secrets = secrets[1:]
		return s, nil
	}
	saved := &adapter.Config{}
	f.save = func(cfg *adapter.Config) error {
		*saved = *cfg
		return nil
	}
	return f, out, saved
}

func TestSetupFlow_Server(t *testing.T) {
	f, out, saved := newTestFlow("https://labels.example.com/\n\n/tmp/labels\n")
	f.probe = func(ctx context.Context, cfg *adapter.Config) (int, error) {
		assert.Equal(t, "cookie-value", cfg.Server.SessionCookie)
		return 12, nil
	}

	require.NoError(t, f.Run(adapter.DefaultConfig()))

	assert.Equal(t, "https://labels.example.com", saved.Server.URL)
	assert.Equal(t, "cookie-value", saved.Server.SessionCookie)
	assert.Equal(t, "csrf-value", saved.Server.CSRFToken)
	assert.True(t, saved.Orders.FromServer)
	assert.Empty(t, saved.Orders.Files)
	assert.Equal(t, "/tmp/labels", saved.Labels.DownloadDir)
	assert.Contains(t, out.String(), "12 orders awaiting shipment")
	assert.Contains(t, out.String(), "Configuration saved")
}

func TestSetupFlow_FilesOnly(t *testing.T) {
	f, _, saved := newTestFlow("\na.xlsx, b.xlsx ,\n\n")
	f.probe = func(context.Context, *adapter.Config) (int, error) {
		t.Fatal("server must not be probed without a URL")
		return 0, nil
	}

	cfg := adapter.DefaultConfig()
	require.NoError(t, f.Run(cfg))

	assert.False(t, saved.Orders.FromServer)
	assert.Equal(t, []string{"a.xlsx", "b.xlsx"}, saved.Orders.Files)
	assert.Equal(t, cfg.Labels.DownloadDir, saved.Labels.DownloadDir)
}

func TestSetupFlow_ProbeFailureKept(t *testing.T) {
	f, out, saved := newTestFlow("https://labels.example.com\ny\n\n\n")
	f.probe = func(context.Context, *adapter.Config) (int, error) {
		return 0, domain.ErrAuthFailed
	}

	require.NoError(t, f.Run(adapter.DefaultConfig()))

	assert.Contains(t, out.String(), "Could not load orders")
	assert.Equal(t, "https://labels.example.com", saved.Server.URL)
}

func TestSetupFlow_NothingConfigured(t *testing.T) {
	f, _, _ := newTestFlow("\n\n")
	f.save = func(*adapter.Config) error { return errors.New("must not save") }

	err := f.Run(adapter.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to load orders from")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
	assert.Nil(t, splitList(""))
}
