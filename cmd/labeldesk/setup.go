package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/labeldesk/internal/adapter"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

const probeTimeout = 15 * time.Second

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the label server and order sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()
			return newSetupFlow(cmd.InOrStdin(), cmd.OutOrStdout()).Run(env.cfg)
		},
	}
}

// setupFlow walks the user through the first configuration
type setupFlow struct {
	in  *bufio.Reader
	out io.Writer

	readSecret func() (string, error)
	probe      func(ctx context.Context, cfg *adapter.Config) (int, error)
	save       func(cfg *adapter.Config) error
}

func newSetupFlow(in io.Reader, out io.Writer) *setupFlow {
	return &setupFlow{
		in:         bufio.NewReader(in),
		out:        out,
		readSecret: readHidden,
		probe:      probeServer,
		save:       adapter.SaveConfig,
	}
}

// readHidden reads a line from the terminal without echo
func readHidden() (string, error) {
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// probeServer fetches the order queue once and reports its size
func probeServer(ctx context.Context, cfg *adapter.Config) (int, error) {
	orders, err := newLabelClient(cfg, nil).FetchOrders(ctx)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

func (f *setupFlow) prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(f.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(f.out, "%s: ", label)
	}
	input, err := f.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

func (f *setupFlow) secret(label string, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(f.out, "%s (leave empty to keep the current one): ", label)
	} else {
		fmt.Fprintf(f.out, "%s: ", label)
	}
	value, err := f.readSecret()
	fmt.Fprintln(f.out) // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if value == "" {
		return current, nil
	}
	return value, nil
}

func (f *setupFlow) confirm(label string) (bool, error) {
	answer, err := f.prompt(label+" [y/N]", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Run prompts for every setting, checks the server and saves the config
func (f *setupFlow) Run(cfg *adapter.Config) error {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Welcome to labeldesk!")
	fmt.Fprintln(f.out)

	for {
		url, err := f.prompt("Label server URL (e.g., https://shop.example.com, empty to skip)", cfg.Server.URL)
		if err != nil {
			return err
		}
		cfg.Server.URL = strings.TrimRight(url, "/")

		if cfg.Server.URL == "" {
			break
		}

		if cfg.Server.SessionCookie, err = f.secret("Session cookie", cfg.Server.SessionCookie); err != nil {
			return err
		}
		if cfg.Server.CSRFToken, err = f.secret("CSRF token", cfg.Server.CSRFToken); err != nil {
			return err
		}

		fmt.Fprintln(f.out)
		count, err := f.probeWithSpinner(cfg)
		if err == nil {
			fmt.Fprintf(f.out, "✓ Connected, %d orders awaiting shipment\n", count)
			break
		}

		fmt.Fprintf(f.out, "✗ Could not load orders: %v\n", err)
		keep, cerr := f.confirm("Keep these settings anyway?")
		if cerr != nil {
			return cerr
		}
		if keep {
			break
		}
		fmt.Fprintln(f.out)
	}
	cfg.Orders.FromServer = cfg.Server.URL != ""

	files, err := f.prompt("Order workbooks (.xlsx, comma separated, optional)", strings.Join(cfg.Orders.Files, ","))
	if err != nil {
		return err
	}
	cfg.Orders.Files = splitList(files)

	if !cfg.IsConfigured() {
		return fmt.Errorf("nothing to load orders from: set a server URL or at least one workbook")
	}

	dir, err := f.prompt("Save labels to", cfg.Labels.DownloadDir)
	if err != nil {
		return err
	}
	cfg.Labels.DownloadDir = dir

	if err := f.save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "✓ Configuration saved!")
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Run labeldesk again to start the application.")
	return nil
}

// probeWithSpinner checks the server while drawing a spinner
func (f *setupFlow) probeWithSpinner(cfg *adapter.Config) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	type result struct {
		count int
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		count, err := f.probe(ctx, cfg)
		resultCh <- result{count, err}
	}()

	frames := spinner.Dot.Frames
	frame := 0
	fmt.Fprintf(f.out, "\r%s Checking the server...", frames[frame])

	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(f.out, clearSpinnerLine)
			return res.count, res.err

		case <-ticker.C:
			frame++
			fmt.Fprintf(f.out, "\r%s Checking the server...", frames[frame%len(frames)])

		case <-ctx.Done():
			fmt.Fprint(f.out, clearSpinnerLine)
			return 0, fmt.Errorf("server check timed out")
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
