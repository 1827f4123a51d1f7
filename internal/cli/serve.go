package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/HartBrook/shrink/internal/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr    string
	maxSize string
	verify  bool
}

// NewServeCmd creates the serve command.
func NewServeCmd(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves validation and minification over HTTP until interrupted.

Endpoints:
  GET  /health
  GET  /v1/kinds
  POST /v1/validate   {"kind": "css", "text": "..."}
  POST /v1/minify     {"kind": "css", "text": "..."}`,
		Example: `  shrink serve
  shrink serve --addr :8080 --max-size 256KiB`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Address to listen on (default from config, 127.0.0.1:8787)")
	cmd.Flags().StringVar(&opts.maxSize, "max-size", "", "Size ceiling per request text, e.g. 512KiB (default from config)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Check that each output is equivalent to its input")

	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions, opts *serveOptions) error {
	e, err := g.engine(opts.maxSize, opts.verify)
	if err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = g.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printSuccess(cmd.ErrOrStderr(), "Listening on %s", info("http://"+addr))
	return server.New(e, g.logger).ListenAndServe(ctx, addr)
}
