package root

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/logx"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chore engine and its HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			if addr == "" {
				addr = a.Config.Server.Addr
			}

			h, err := a.Handler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
			srvErr := make(chan error, 1)
			go func() {
				a.Logger.Info("http_listening", logx.Fields{"addr": addr})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					srvErr <- err
				}
				close(srvErr)
			}()

			runCtx, cancelRun := context.WithCancel(ctx)
			defer cancelRun()
			var httpErr error
			watched := make(chan struct{})
			go func() {
				defer close(watched)
				if err := <-srvErr; err != nil {
					httpErr = fmt.Errorf("http server on %s: %w", addr, err)
					a.Logger.Error("http_failed", logx.Fields{"error": err})
					cancelRun()
				}
			}()

			runErr := a.Runtime.Run(runCtx)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownErr := srv.Shutdown(shutdownCtx)
			<-watched
			return errors.Join(runErr, httpErr, shutdownErr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return cmd
}
