package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/wavop"
	"github.com/hupe1980/wavop/vector"
)

func newForwardCmd(g *globalFlags) *cobra.Command {
	var adjoint bool
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Model data for every shot of an experiment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s, err := g.open(ctx, out)
			if err != nil {
				return err
			}
			f, err := wavop.NewFullModeling(s.exp.Model, s.exp.Src, s.exp.Rec, s.solver, s.opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "operator %s %v\n", f.Kind(), f.Shape())

			res, err := f.Apply(ctx, s.exp.Q)
			if err != nil {
				return err
			}
			d := res.(*vector.Vector)
			for i := range d.NSrc() {
				one, err := d.Subset([]int{i})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "shot %d: %d traces x %d samples, norm %.6g\n", i, len(d.Geometry.X[i]), d.Geometry.NT[i], one.Norm())
			}
			if s.cfg.Options.SaveDataToDisk {
				fmt.Fprintf(out, "records written with prefix %q\n", s.cfg.Options.FileName)
			}

			if adjoint {
				back, err := f.Adjoint().Apply(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "adjoint: norm %.6g\n", back.(*vector.Vector).Norm())
			}
			return s.dumpMetrics(cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&adjoint, "adjoint", false, "also map the data back to the sources")
	return cmd
}
