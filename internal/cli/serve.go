package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bomend/bomend/internal/api"
)

// newServeCmd creates the serve command, running the enrichment HTTP API.
func newServeCmd() *cobra.Command {
	var (
		addr       string
		serviceURL string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the enrichment HTTP API",
		Long:  `Serve BOM enrichment over HTTP. POST a CycloneDX document and a TOML plan to /enrich as multipart form files "bom" and "plan". Set BOMEND_REDIS_URL to share the lookup cache across instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			c := newCache(ctx, noCache)
			defer c.Close()

			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(logger, c, serviceURL).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
				return ctx.Err()
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8435", "listen address")
	cmd.Flags().StringVar(&serviceURL, "service-url", "", "ClearlyDefined API base URL (for self-hosted instances)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup response cache")

	return cmd
}
