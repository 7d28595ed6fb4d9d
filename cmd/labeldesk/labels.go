package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/labeldesk/internal/labels"
)

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect and manage requested labels",
	}
	cmd.AddCommand(newLabelsListCmd(), newLabelsClearCmd(), newLabelsGetCmd())
	return cmd
}

// withServices loads the config and runs fn with the wired services
func withServices(fn func(env *environment, svc *services) error) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	svc, err := newServices(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(env, svc)
}

func newLabelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print tracking numbers whose labels were already requested",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(func(_ *environment, svc *services) error {
				return listLabels(cmd.OutOrStdout(), svc.registry)
			})
		},
	}
}

func listLabels(out io.Writer, registry *labels.Registry) error {
	for _, n := range registry.List() {
		if _, err := fmt.Fprintln(out, n); err != nil {
			return err
		}
	}
	return nil
}

func newLabelsClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every requested label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(func(_ *environment, svc *services) error {
				return clearLabels(cmd.InOrStdin(), cmd.OutOrStdout(), svc.registry, yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func clearLabels(in io.Reader, out io.Writer, registry *labels.Registry, yes bool) error {
	count := len(registry.List())
	if count == 0 {
		fmt.Fprintln(out, "No requested labels to forget.")
		return nil
	}

	if !yes {
		fmt.Fprintf(out, "Forget %d requested labels? [y/N]: ", count)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := registry.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Forgot %d requested labels.\n", count)
	return nil
}

func newLabelsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tracking-number>...",
		Short: "Request labels for the given tracking numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return withServices(func(_ *environment, svc *services) error {
				return getLabels(ctx, cmd.OutOrStdout(), svc.coordinator, args)
			})
		},
	}
}

func getLabels(ctx context.Context, out io.Writer, coord *labels.Coordinator, args []string) error {
	seen := make(map[string]bool, len(args))
	var numbers []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" && !seen[a] {
			seen[a] = true
			numbers = append(numbers, a)
		}
	}

	outcome, err := coord.Request(ctx, numbers)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, outcome.Message)
	return nil
}
