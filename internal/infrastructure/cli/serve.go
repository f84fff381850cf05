package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/niksavis/burndown-chart/internal/infrastructure/watch"
	"github.com/niksavis/burndown-chart/pkg/infrastructure/dashboard"
	"github.com/niksavis/burndown-chart/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	Long: `Serve starts an HTTP dashboard for the workspace. With --watch, changes to
the workspace data files are picked up automatically and pushed to connected
browsers over a websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		server, err := dashboard.NewServer(serveAddr, services.Insights)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 2)

		if serveWatch {
			dataDir := filepath.Join(services.Workspace.Root, storage.BurndownDir)
			watcher, err := watch.NewWorkspaceWatcher(dataDir, 0, func() {
				if err := server.Broadcast(context.Background()); err != nil {
					fmt.Printf("Warning: broadcast failed: %v\n", err)
				}
			})
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", dataDir, err)
			}
			go func() {
				errCh <- watcher.Run(ctx)
			}()
			fmt.Printf("Watching %s for changes\n", dataDir)
		}

		go func() {
			errCh <- server.Start()
		}()
		fmt.Printf("Dashboard available at http://%s\n", serveAddr)

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8844", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false,
		"Push recomputed snapshots to browsers when workspace data changes")
	RootCmd.AddCommand(serveCmd)
}
