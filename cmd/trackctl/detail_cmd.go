package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logitrack/tracker/internal/client"
)

func newDetailCmd(newClient func() *client.Client) *cobra.Command {
	var timelineOnly bool

	cmd := &cobra.Command{
		Use:   "detail <shipment_id>",
		Short: "Show one shipment with its derived timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if !timelineOnly {
				d, err := c.Detail(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("detail %s: %w", args[0], err)
				}
				return printJSON(cmd.OutOrStdout(), d)
			}

			tl, err := c.Timeline(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("timeline %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %d%%  %s\n", tl.Mode, tl.Percent, tl.EffectiveStatus)
			for i, st := range tl.Steps {
				marker := " "
				if i == tl.CurrentIndex {
					marker = ">"
				}
				fmt.Fprintf(out, "%s %-8s %-40s %s\n", marker, st.State, st.Label, st.StatusText)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&timelineOnly, "timeline", false, "print only the step timeline")

	return cmd
}
