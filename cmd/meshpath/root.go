package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/meshpath/config"
	"github.com/katalvlaran/meshpath/mesh"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	logLevel  string
	logFormat string
	meshPath  string
	cfgPath   string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "meshpath",
		Short:         "Plan geodesic paths on triangle meshes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), f.logLevel, f.logFormat)
			if err != nil {
				return err
			}
			f.logger = logger
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&f.meshPath, "mesh", "", "mesh file (.obj, .yaml, .yml)")
	pf.StringVar(&f.cfgPath, "config", "", "planner config YAML; defaults when empty")

	cmd.AddCommand(newPlanCmd(f), newBatchCmd(f))

	return cmd
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("--log-format: unknown format %q", format)
}

// load reads the mesh and the planner config named by the flags. The config
// is layered: defaults, then the file, then MESHPATH_* variables.
func (f *rootFlags) load() (*mesh.Mesh, config.Config, error) {
	if f.meshPath == "" {
		return nil, config.Config{}, fmt.Errorf("--mesh is required")
	}
	cfg := config.Default()
	if f.cfgPath != "" {
		var err error
		if cfg, err = config.Load(f.cfgPath); err != nil {
			return nil, cfg, err
		}
	}
	cfg = cfg.WithEnv()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}

	m, err := mesh.LoadFile(f.meshPath, mesh.WithLogger(f.logger))
	if err != nil {
		return nil, cfg, err
	}
	st := m.Stats()
	f.logger.Info("mesh loaded",
		slog.String("path", f.meshPath),
		slog.Int("vertices", st.Vertices),
		slog.Int("faces", st.Faces),
		slog.Int("invalid", st.Invalid),
	)

	return m, cfg, nil
}

// parsePoint parses "x,y,z"; a missing z is taken as 0.
func parsePoint(s string) (r3.Vector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return r3.Vector{}, fmt.Errorf("point %q: want x,y[,z]", s)
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vector{}, fmt.Errorf("point %q: %w", s, err)
		}
		c[i] = v
	}
	return r3.Vector{X: c[0], Y: c[1], Z: c[2]}, nil
}
