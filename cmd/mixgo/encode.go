package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/mixgo"
	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/value"
	"github.com/spf13/cobra"
)

// jsonRow is one line of the encode input. Rows without an id are numbered
// by line.
type jsonRow struct {
	ID  *uint64   `json:"id,omitempty"`
	Row value.Row `json:"row"`
}

type encodeFlags struct {
	model string
	codec string
}

func newEncodeCmd(g *globalFlags) *cobra.Command {
	var f encodeFlags

	cmd := &cobra.Command{
		Use:   "encode ROWS_JSONL ROWS_OUT",
		Short: "Convert JSON-lines rows into the binary row stream",
		Long: `encode reads one {"id": N, "row": {...}} object per line and writes the
framed binary row stream read by infer. With --model every row is
validated against the model's schema.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := runEncode(cmd.Context(), g, &f, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "encoded %d rows\n", n)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.model, "model", "", "validate rows against this model definition")
	fs.StringVar(&f.codec, "codec", "go-json", "JSON codec: json or go-json")
	return cmd
}

func runEncode(ctx context.Context, g *globalFlags, f *encodeFlags, in, out string) (int, error) {
	c, err := codec.ByName(f.codec)
	if err != nil {
		return 0, err
	}

	var schema *value.Schema
	if f.model != "" {
		m, err := loadModel(ctx, &g.store, f.model, c)
		if err != nil {
			return 0, err
		}
		ms, err := m.Schema()
		if err != nil {
			return 0, err
		}
		s := value.SchemaOf(ms)
		schema = &s
	}

	inStore, inLoc, err := g.store.resolve(ctx, in)
	if err != nil {
		return 0, err
	}
	r, err := mixgo.OpenBlob(ctx, inStore, inLoc.Name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inLoc, err)
	}
	defer r.Close()

	outStore, outLoc, err := g.store.resolve(ctx, out)
	if err != nil {
		return 0, err
	}

	var count int
	err = mixgo.WriteBlob(ctx, outStore, outLoc.Name, func(w io.Writer) error {
		rw := mixgo.NewRowWriter(w)
		if err := encodeLines(r, rw, c, schema); err != nil {
			return err
		}
		count = rw.Count()
		return rw.Flush()
	})
	return count, err
}

func encodeLines(r io.Reader, rw *mixgo.RowWriter, c codec.Codec, schema *value.Schema) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}

		var jr jsonRow
		if err := c.Unmarshal(data, &jr); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if schema != nil {
			if err := schema.Validate(&jr.Row); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
		id := uint64(line - 1)
		if jr.ID != nil {
			id = *jr.ID
		}
		if err := rw.Write(id, &jr.Row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}
