package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/mixgo"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	logFormat string
	logLevel  string
	store     storeFlags
}

func (g *globalFlags) logger() (*mixgo.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", g.logLevel)
	}
	switch strings.ToLower(g.logFormat) {
	case "text":
		return mixgo.NewTextLogger(level), nil
	case "json":
		return mixgo.NewJSONLogger(level), nil
	case "none":
		return mixgo.NoopLogger(), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text, json or none)", g.logFormat)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "mixgo",
		Short: "Bayesian product-mixture inference",
		Long: `mixgo clusters heterogeneous, partially observed rows under a
Pitman-Yor product mixture of conjugate feature models.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logFormat, "log-format", "text", "log format: text, json or none")
	pf.StringVar(&g.logLevel, "log-level", "info", "minimum log level: debug, info, warn or error")
	g.store.register(pf)

	cmd.AddCommand(newInferCmd(&g), newEncodeCmd(&g))
	return cmd
}
