package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonghq/skong/internal/config"
	"github.com/skonghq/skong/internal/observability"
	"github.com/skonghq/skong/internal/server"
	"github.com/skonghq/skong/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve project statuses over HTTP (read-only)",
	Long: `Start a read-only HTTP server over the project tree at --path.

Endpoints:
  GET /health                    health check
  GET /version                   build identity
  GET /projects                  all tracked directories with statuses
  GET /projects?status=RUNNING   filtered listing
  GET /projects/{name}/history   one directory's history log

Examples:
  skong serve --path runs
  skong serve --host 0.0.0.0 --port 9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")
}

// treeHealthChecker fails when the served project tree is gone.
type treeHealthChecker struct {
	tree string
}

func (c treeHealthChecker) CheckHealth(_ context.Context) error {
	info, err := os.Stat(c.tree)
	if err != nil {
		return fmt.Errorf("project tree unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project tree is not a directory: %s", c.tree)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	appCfg := config.GetConfig()
	if appCfg == nil {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
		}
		appCfg = loaded
	}

	host := appCfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := appCfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	tree, err := filepath.Abs(flagPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid path", err)
	}
	if info, err := os.Stat(tree); err != nil || !info.IsDir() {
		return exitError(foundry.ExitFileNotFound, "Project tree does not exist",
			fmt.Errorf("not a directory: %s", tree))
	}

	hm := handlers.InitHealthManager(versionInfo.Version)
	hm.RegisterChecker("tree", treeHealthChecker{tree: tree})

	srv := server.New(host, port, tree).
		WithVersion(handlers.VersionInfo{
			Version:   versionInfo.Version,
			Commit:    versionInfo.Commit,
			BuildDate: versionInfo.BuildDate,
		}).
		WithLogger(observability.CLILogger).
		WithShutdownTimeout(appCfg.Server.ShutdownTimeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		observability.CLILogger.Error("Status server failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Status server failed", err)
	}

	if ctx.Err() != nil {
		observability.CLILogger.Info("Status server stopped on signal")
	}
	return nil
}
