package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"logitrack/tracker/internal/client"
	"logitrack/tracker/internal/models/dtos"
)

type importOptions struct {
	client.ImportOptions
	Stream bool
}

func newImportCmd(newClient func() *client.Client) *cobra.Command {
	opts := importOptions{ImportOptions: client.DefaultImportOptions()}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import all sheets into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := runImport(ctx, newClient(), opts, func(line string) {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			})
			if errors.Is(err, client.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "fetch and validate without writing")
	cmd.Flags().BoolVar(&opts.Strict, "strict", true, "require sheet headers to match the table columns")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", true, "write child tables concurrently")
	cmd.Flags().IntVar(&opts.Batch, "batch", 0, "rows per write batch (0 uses the server default)")
	cmd.Flags().BoolVar(&opts.Stream, "stream", true, "print progress lines while the import runs")

	return cmd
}

func runImport(ctx context.Context, c *client.Client, opts importOptions, onLine func(string)) (*dtos.ImportResult, error) {
	if opts.Stream {
		return c.ImportStream(ctx, opts.ImportOptions, onLine)
	}
	return c.Import(ctx, opts.ImportOptions)
}
