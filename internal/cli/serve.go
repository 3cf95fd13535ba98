package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routegraph/internal/server"
	"github.com/matzehuels/routegraph/pkg/observability"
	"github.com/matzehuels/routegraph/pkg/whitelist"
)

// serveCommand creates the serve command, which runs the HTTP front end.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen    string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routing graphs and the portal loader script over HTTP",
		Long: `Serve routing graphs over HTTP.

Endpoints:
  GET /graph?domain=&token=&api_url=          Cytoscape elements as JSON
  GET /static/route_graph_inventory_tab.js    portal loader script
  GET /healthz                                liveness probe
  GET /metrics                                Prometheus metrics

api_url must match the whitelist (WHITELIST_FILE and ALLOWED_DOMAINS_ENV).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			s := c.conf()
			if !cmd.Flags().Changed("listen") {
				listen = s.Listen
			}

			runner, err := c.newRunner(ctx, s.CacheURL, s.CacheTTL)
			if err != nil {
				return err
			}
			defer runner.Close()

			wl := whitelist.New(s.WhitelistFile, s.AllowedDomains, logger)
			if len(wl.Patterns()) == 0 {
				logger.Warn("whitelist is empty; every api_url will be rejected")
			}

			var metrics *observability.Metrics
			if !noMetrics {
				metrics = observability.NewMetrics()
				observability.SetBuildHooks(metrics)
				observability.SetHTTPHooks(metrics)
				observability.SetCacheHooks(metrics)
				defer observability.Reset()
			}

			srv, err := server.New(server.Config{
				Runner:         runner,
				Whitelist:      wl,
				DefaultAPIURLs: s.APIURLs,
				PublicAPIURL:   s.PublicAPIURL,
				Metrics:        metrics,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			printSuccess("Listening on %s", StyleLink.Render(displayAddr(listen)))
			printKeyValue("Whitelist", fmt.Sprintf("%d patterns", len(wl.Patterns())))
			printKeyValue("API URLs", strings.Join(s.APIURLs, ", "))
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from LISTEN_ADDR)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics")

	return cmd
}

// displayAddr turns a listen address into a clickable URL.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
