package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"logitrack/tracker/internal/client"
)

type rootOptions struct {
	BaseURL    string
	AdminToken string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "trackctl",
		Short:         "Operator CLI for the shipment tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", envOr("TRACKER_URL", "http://localhost:8080"), "tracker API base URL")
	cmd.PersistentFlags().StringVar(&opts.AdminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "admin token for imports")

	newClient := func() *client.Client {
		return client.New(opts.BaseURL, client.WithAdminToken(opts.AdminToken))
	}
	cmd.AddCommand(newImportCmd(newClient))
	cmd.AddCommand(newSearchCmd(newClient))
	cmd.AddCommand(newDetailCmd(newClient))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
