package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logitrack/tracker/internal/client"
	"logitrack/tracker/internal/models/dtos"
)

func newSearchCmd(newClient func() *client.Client) *cobra.Command {
	var (
		params dtos.SearchParams
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search shipments by id, reference or container number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Q = args[0]
			res, err := newClient().Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "SHIPMENT\tMODE\tPOL\tPOD\tETD\tETA\tCONTAINERS\n")
			for _, r := range res.Rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ShipmentID,
					str(r.Mode), str(r.POLAOL), str(r.PODAOD), str(r.ETDDate), str(r.ETADate), str(r.Containers))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rows (tier: %s)\n", len(res.Rows), res.Tier)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.POL, "pol", "", "port/airport of loading filter")
	cmd.Flags().StringVar(&params.POD, "pod", "", "port/airport of discharge filter")
	cmd.Flags().StringVar(&params.PlaceOfDelivery, "place", "", "place of delivery filter")
	cmd.Flags().StringVar(&params.Mode, "mode", "", "SEA or AIR")
	cmd.Flags().StringVar(&params.SortBy, "sort", "", "ETD or ETA")
	cmd.Flags().StringVar(&params.Dir, "dir", "", "ASC or DESC")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
