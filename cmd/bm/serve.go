package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/httpserver"
	"github.com/nikbrunner/bmsort/internal/httpserver/handlers"
	"github.com/nikbrunner/bmsort/internal/logger"
)

// Version is set at build time.
var Version = "dev"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bookmark codec and reconciler over HTTP",
	Long: `Runs an HTTP server for browser extensions and scripts:

  POST /api/parse      Netscape HTML in, library JSON out
  POST /api/export     library JSON in, Netscape HTML out
  POST /api/suggest    {library, prompt} in, proposal out
  POST /api/proposal   {library, proposal} in, {library, report} out
  POST /api/actions    {library, actions} in, {library, effects} out
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8417", "listen address")
	serveCmd.Flags().StringSlice("cors-origin", []string{"chrome-extension://*", "moz-extension://*"}, "origins allowed to call the API from a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	origins, _ := cmd.Flags().GetStringSlice("cors-origin")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	d := handlers.Deps{
		Logger:     a.log,
		Reconciler: a.rec,
		StartTime:  time.Now(),
		Version:    Version,

		CORSOrigins: origins,
	}
	if client, err := a.aiClient(); err == nil {
		d.Suggester = client
	} else {
		a.log.Warn("suggestions disabled", logger.Error(err))
	}

	server := httpserver.New(addr, d)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(ctx)
}
