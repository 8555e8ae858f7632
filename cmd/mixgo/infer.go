package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/mixgo"
	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/mixture"
	"github.com/hupe1980/mixgo/value"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type inferFlags struct {
	groupsIn        string
	assignIn        string
	assignOut       string
	seed            uint64
	checkLevel      string
	codec           string
	sparseThreshold float32
}

func newInferCmd(g *globalFlags) *cobra.Command {
	var f inferFlags

	cmd := &cobra.Command{
		Use:   "infer MODEL_IN ROWS_IN GROUPS_OUT",
		Short: "Assign every row to a sampled group and dump the groups",
		Long: `infer loads a model definition (JSON, or YAML for .yaml/.yml), streams
rows from ROWS_IN (see encode), samples a group for each row and writes
the resulting groups to GROUPS_OUT. Files ending in .lz4 or .zst are
compressed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd.Context(), g, &f, args[0], args[1], args[2])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.groupsIn, "groups-in", "", "resume from a groups dump")
	fs.StringVar(&f.assignIn, "assign-in", "", "resume row assignments (requires --groups-in)")
	fs.StringVar(&f.assignOut, "assign-out", "", "write row assignments next to GROUPS_OUT")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (0 picks one)")
	fs.StringVar(&f.checkLevel, "check-level", "basic", "row validation: off, basic or strict")
	fs.StringVar(&f.codec, "codec", "go-json", "JSON codec for model and dumps: json or go-json")
	fs.Float32Var(&f.sparseThreshold, "sparse-threshold", 0, "store rows observing less than this fraction of columns sparsely")
	return cmd
}

func runInfer(ctx context.Context, g *globalFlags, f *inferFlags, modelIn, rowsIn, groupsOut string) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	level, err := value.ParseCheckLevel(f.checkLevel)
	if err != nil {
		return err
	}
	c, err := codec.ByName(f.codec)
	if err != nil {
		return err
	}
	if f.assignIn != "" && f.groupsIn == "" {
		return fmt.Errorf("--assign-in requires --groups-in")
	}

	outStore, outLoc, err := g.store.resolve(ctx, groupsOut)
	if err != nil {
		return err
	}
	var assignOutName string
	if f.assignOut != "" {
		loc, err := blobstore.ParseLocation(f.assignOut)
		if err != nil {
			return err
		}
		if !sameStore(loc, outLoc) {
			return fmt.Errorf("--assign-out %s must be in the same directory as %s", loc, outLoc)
		}
		assignOutName = loc.Name
	}

	var (
		model *mixture.ProductModel
		rows  io.ReadCloser
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		model, err = loadModel(egctx, &g.store, modelIn, c)
		return err
	})
	eg.Go(func() error {
		store, loc, err := g.store.resolve(egctx, rowsIn)
		if err != nil {
			return err
		}
		rows, err = mixgo.OpenBlob(egctx, store, loc.Name)
		if err != nil {
			return fmt.Errorf("open rows %s: %w", loc, err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		if rows != nil {
			_ = rows.Close()
		}
		return err
	}
	defer rows.Close()

	opts := []mixgo.Option{
		mixgo.WithLogger(logger),
		mixgo.WithCheckLevel(level),
		mixgo.WithCodec(c),
		mixgo.WithSparseThreshold(f.sparseThreshold),
	}
	if f.seed != 0 {
		opts = append(opts, mixgo.WithSeed(f.seed))
	}
	eng, err := mixgo.New(model, opts...)
	if err != nil {
		return err
	}

	if f.groupsIn != "" {
		store, loc, err := g.store.resolve(ctx, f.groupsIn)
		if err != nil {
			return err
		}
		var assignInName string
		if f.assignIn != "" {
			aloc, err := blobstore.ParseLocation(f.assignIn)
			if err != nil {
				return err
			}
			if !sameStore(aloc, loc) {
				return fmt.Errorf("--assign-in %s must be in the same directory as --groups-in %s", aloc, loc)
			}
			assignInName = aloc.Name
		}
		if err := eng.Load(ctx, store, loc.Name, assignInName); err != nil {
			return err
		}
	}

	if _, err := eng.Infer(ctx, mixgo.NewRowReader(rows)); err != nil {
		return err
	}
	return eng.Dump(ctx, outStore, outLoc.Name, assignOutName)
}

func loadModel(ctx context.Context, sf *storeFlags, location string, c codec.Codec) (*mixture.ProductModel, error) {
	store, loc, err := sf.resolve(ctx, location)
	if err != nil {
		return nil, err
	}
	r, err := mixgo.OpenBlob(ctx, store, loc.Name)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", loc, err)
	}
	defer r.Close()

	m, err := mixture.LoadModel(r, mixture.FormatOf(loc.Name), c)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", loc, err)
	}
	return m, nil
}
