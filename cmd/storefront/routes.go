package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storefront/internal/config"
	"github.com/vango-dev/storefront/internal/pages"
	"github.com/vango-dev/storefront/pkg/router"
)

func routesCmd(dir *string) *cobra.Command {
	var resolve string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List page routes",
		Long: `List the page routes in match order.

With --resolve, print which route a URL resolves to and its parameters.

Examples:
  storefront routes
  storefront routes --resolve=/product/85067212996/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}

			srv := router.NewServer[string](router.WithBase(cfg.Server.Base))
			for _, r := range pages.Routes() {
				srv.AddRoute(r.Path, r.Name)
			}

			out := cmd.OutOrStdout()
			if resolve != "" {
				srv.Start(resolve, nil)
				route := srv.Route()
				if route == nil {
					return fmt.Errorf("no route matches %s", resolve)
				}
				fmt.Fprintf(out, "%s -> %s (%s)\n", resolve, route.Path, route.Handler)
				for _, name := range route.ParamNames {
					fmt.Fprintf(out, "  %s = %s\n", name, route.Params[name])
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tPAGE")
			for _, r := range pages.Routes() {
				fmt.Fprintf(tw, "%s%s\t%s\n", cfg.Server.Base, r.Path, r.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&resolve, "resolve", "r", "", "Resolve a URL against the routes")
	return cmd
}
