package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/funny-backend/internal/app"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "funny",
	Short:         "Funny Backend API: mini-game progress tracking and AI reports",
	Version:       version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
	seedCmd.Flags().Bool("demo", false, "also create the demo guardian, class and children")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateVersionCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if migrate {
				if err := a.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}
			return a.Run(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Migrate(ctx)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Store.MigrateDown(ctx)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Store.MigrateStatus(ctx)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			v, err := a.Store.MigrateVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load diagnoses and activities, and optionally demo data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		demo, _ := cmd.Flags().GetBool("demo")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Seed(ctx, demo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: %d diagnoses, %d activities, %d guardians, %d classes, %d children\n",
				res.Diagnoses, res.Activities, res.Guardians, res.Classes, res.Children)
			return nil
		})
	},
}
