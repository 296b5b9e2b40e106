package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storefront/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌┬┐┌─┐┬─┐┌─┐┌─┐┬─┐┌─┐┌┐┌┌┬┐
  └─┐ │ │ │├┬┘├┤ ├┤ ├┬┘│ ││││ │
  └─┘ ┴ └─┘┴└─└─┘└  ┴└─└─┘┘└┘ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:   "storefront",
		Short: "A reactive shopping storefront",
		Long: `Storefront serves a shopping site rendered on the server and kept
live in the browser over a websocket.

  • Product list with search, category filters, sort and paging
  • Product detail with related products
  • Persistent cart (memory, SQL or S3)
  • Prometheus metrics and OpenTelemetry spans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory holding storefront.toml or storefront.json")

	root.AddCommand(
		serveCmd(&dir),
		routesCmd(&dir),
		initCmd(&dir),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
