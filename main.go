package main

import (
	"context"
	"fmt"
	"os"

	"todo-web/app/config"
	"todo-web/app/controllers"
	"todo-web/app/logging"
	"todo-web/app/routes"
	"todo-web/app/server"
	"todo-web/app/services"
	"todo-web/app/views"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "todo-web",
	Short: "MyTodo - a small server-rendered to-do list",
	Long: `todo-web serves a single-user to-do list over HTTP.

Run without arguments to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the storage schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := services.Open(ctx, cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := store.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("Schema is up to date", zap.String("driver", cfg.Storage.Driver))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "todo-web", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "todo.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func runServe(ctx context.Context) error {
	store, err := services.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(ctx)
		return err
	}

	renderer, err := views.New()
	if err != nil {
		_ = store.Close(ctx)
		return err
	}

	todoController := controllers.NewTodoController(store, renderer, logger)
	srv := server.New(cfg.Server, routes.NewHandler(todoController, logger), logger)
	if err := srv.Start(); err != nil {
		_ = store.Close(ctx)
		return err
	}

	// The store must outlive in-flight requests, so both steps run in one
	// operation.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.GetShutdownTimeout(),
		map[string]gfshutdown.Operation{
			"todo-web": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated...")
				if err := srv.Shutdown(ctx); err != nil {
					return err
				}
				return store.Close(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", zap.Int("code", exitCode))
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
