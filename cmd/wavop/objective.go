package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/wavop"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/vector"
)

func newObjectiveCmd(g *globalFlags) *cobra.Command {
	var (
		shots string
		scale float64
	)
	cmd := &cobra.Command{
		Use:   "objective",
		Short: "Evaluate the least-squares misfit and gradient against a scaled background",
		Long: "Models observed data in the experiment model, then evaluates the misfit " +
			"and its gradient in a background whose squared slowness is scaled by --scale.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			idx, err := parseShots(shots)
			if err != nil {
				return err
			}
			s, err := g.open(ctx, out)
			if err != nil {
				return err
			}

			// Observed data are never written to the record store.
			full, err := wavop.NewFullModeling(s.exp.Model, s.exp.Src, s.exp.Rec, s.solver)
			if err != nil {
				return err
			}
			res, err := full.Apply(ctx, s.exp.Q)
			if err != nil {
				return err
			}
			d := res.(*vector.Vector)

			m0, err := scaleModel(s.exp.Model, float32(scale))
			if err != nil {
				return err
			}
			if idx == nil {
				idx = make([]int, d.NSrc())
				for i := range idx {
					idx[i] = i
				}
			}
			fval, grad, err := wavop.ObjectiveShots(ctx, m0, s.exp.Q, d, s.solver, idx, s.opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "shots %v: fval %.6g, gradient norm %.6g\n", idx, fval, grad.Norm())
			return s.dumpMetrics(cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&shots, "shots", "", "comma separated shot indices (default all)")
	cmd.Flags().Float64Var(&scale, "scale", 0.9, "background squared slowness scale")
	return cmd
}

func parseShots(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	idx := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("shots: %w", err)
		}
		idx = append(idx, i)
	}
	return idx, nil
}

func scaleModel(m *model.Model, a float32) (*model.Model, error) {
	if a <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", a)
	}
	field := make([]float32, len(m.M))
	for i, v := range m.M {
		field[i] = a * v
	}
	return model.New(m.Shape, m.Spacing, m.Origin, field,
		model.WithDensity(m.Rho), model.WithNBPML(m.NBPML))
}
