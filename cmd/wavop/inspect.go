package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/wavop/blobstore"
	"github.com/hupe1980/wavop/record"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <record>...",
		Short: "Print the headers of shot records on local disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				store := record.NewStore(blobstore.NewLocalStore(filepath.Dir(path)))
				h, err := store.Inspect(cmd.Context(), filepath.Base(path))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: shot %d, source (%g, %g, %g), %d traces, nt %d, dt %g, t %g",
					filepath.Base(path), h.Shot, h.SourceX[0], h.SourceY[0], h.SourceZ[0],
					h.NTraces(), h.NT, h.Dt, h.T)
				if h.RunID != "" {
					fmt.Fprintf(out, ", run %s", h.RunID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
