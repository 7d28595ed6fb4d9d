package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/labeldesk/internal/adapter"
	"github.com/mmcdole/labeldesk/internal/adapter/sheet"
	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/orders"
)

// exportOptions narrows the exported rows the way the table filters do
type exportOptions struct {
	status     string
	duplicates bool
	filters    []string // column=value
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the order queue to an Excel workbook",
		Long: `Loads the order queue and writes the rows that pass the filters to an .xlsx
workbook. Without a path the file goes to the label download directory.

Example:
  labeldesk export --status not_downloaded --filter warehouse=Moscow`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(env *environment, svc *services) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return runExport(cmd.Context(), cmd.OutOrStdout(), svc, opts, path,
					adapter.ExpandPath(env.cfg.Labels.DownloadDir), time.Now())
			})
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", string(domain.DownloadAny), "download status: any, downloaded, not_downloaded")
	cmd.Flags().BoolVar(&opts.duplicates, "duplicates", false, "only rows whose tracking number repeats")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "column=value substring filter, repeatable")
	return cmd
}

// applyFilters configures the table from the command flags
func (o exportOptions) applyFilters(t *orders.Table) error {
	for _, f := range o.filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q: expected column=value", f)
		}
		key, ok := sheet.ResolveColumn(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		col, _ := domain.ColumnByKey(key)
		t.SetColumnFilter(col.Label, strings.TrimSpace(value))
	}
	t.SetDownloadStatus(domain.ParseDownloadStatus(o.status))
	t.SetOnlyDuplicates(o.duplicates)
	return nil
}

func runExport(ctx context.Context, out io.Writer, svc *services, opts exportOptions, path, dir string, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := svc.orders.Load(ctx)
	if err != nil {
		return err
	}
	for _, f := range result.Failed {
		fmt.Fprintf(out, "warning: %v\n", f)
	}

	table := orders.NewTable(result.Orders, svc.registry.Load())
	if err := opts.applyFilters(table); err != nil {
		return err
	}

	rows := table.VisibleOrders()
	if len(rows) == 0 {
		return fmt.Errorf("no orders match the filters")
	}

	if path == "" {
		path = filepath.Join(dir, sheet.ExportFileName(rows[0].Shop, now))
	}
	if err := sheet.Export(path, rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "Exported %d orders to %s\n", len(rows), path)
	return nil
}
