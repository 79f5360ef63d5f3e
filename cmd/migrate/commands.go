package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

type migrator interface {
	Ensure(ctx context.Context) error
	Status(ctx context.Context) error
	Down(ctx context.Context, targetVersion int64) error
	Close()
}

type openFunc func(ctx context.Context) (migrator, error)

func newRootCmd(open openFunc, log *slog.Logger) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the accounts database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "command timeout")

	// run opens a runner bounded by --timeout and hands it to fn.
	run := func(cmd *cobra.Command, name string, fn func(context.Context, migrator) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		runner, err := open(ctx)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer runner.Close()

		if err := fn(ctx, runner); err != nil {
			return err
		}
		log.Info("migration command completed", "command", name)
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "up", func(ctx context.Context, m migrator) error {
				return m.Ensure(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "status", func(ctx context.Context, m migrator) error {
				return m.Status(ctx)
			})
		},
	})
	cmd.AddCommand(newDownCmd(run))
	return cmd
}

func newDownCmd(run func(*cobra.Command, string, func(context.Context, migrator) error) error) *cobra.Command {
	var target int64

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target < 0 {
				return fmt.Errorf("invalid target version %d", target)
			}
			return run(cmd, "down", func(ctx context.Context, m migrator) error {
				return m.Down(ctx, target)
			})
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "target version (0 rolls back the latest migration)")
	return cmd
}
