package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/hupe1980/wavop"
	"github.com/hupe1980/wavop/experiment"
	"github.com/hupe1980/wavop/metric"
	"github.com/hupe1980/wavop/solver"
)

type globalFlags struct {
	config   string
	logLevel string
	jsonLogs bool
	metrics  bool
	width    float64
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "wavop",
		Short:         "Seismic forward and adjoint modeling with linear operators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.config, "config", "c", "experiment.yaml", "experiment file")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&g.jsonLogs, "json-logs", false, "log as JSON")
	pf.BoolVar(&g.metrics, "metrics", false, "print Prometheus metrics after the run")
	pf.Float64Var(&g.width, "kernel-width", solver.DefaultWidth, "Born kernel half-width in cells")

	cmd.AddCommand(newForwardCmd(g), newObjectiveCmd(g), newInspectCmd())
	return cmd
}

// session holds everything a modeling command needs.
type session struct {
	cfg      *experiment.Config
	exp      *experiment.Experiment
	runID    string
	logger   *wavop.Logger
	registry *prometheus.Registry
	opts     []wavop.Option
	solver   wavop.Solver
}

func (g *globalFlags) open(ctx context.Context, out io.Writer) (*session, error) {
	cfg, err := experiment.Load(g.config)
	if err != nil {
		return nil, err
	}
	exp, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := wavop.NewTextLogger(level)
	if g.jsonLogs {
		logger = wavop.NewJSONLogger(level)
	}
	runID := uuid.NewString()
	logger = logger.WithRunID(runID)

	rc := cfg.Controller()
	opts, err := cfg.OperatorOptions(ctx, rc, runID)
	if err != nil {
		return nil, err
	}
	opts = append(opts, wavop.WithLogger(logger))

	s := &session{cfg: cfg, exp: exp, runID: runID, logger: logger, opts: opts}
	if g.metrics {
		s.registry = prometheus.NewRegistry()
		pc, err := metric.NewPrometheusCollector(s.registry)
		if err != nil {
			return nil, err
		}
		s.opts = append(s.opts, wavop.WithMetricsCollector(pc))
	}
	s.solver = solver.NewKinematic(solver.WithWidth(g.width))

	fmt.Fprintf(out, "run %s: %d shots, model %v\n", runID, exp.NSrc(), exp.Model.Shape)
	return s, nil
}

// dumpMetrics writes the gathered metrics in the Prometheus text format.
func (s *session) dumpMetrics(w io.Writer) error {
	if s.registry == nil {
		return nil
	}
	families, err := s.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
