package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo"
	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/mixture"
)

const testModelYAML = `
clustering:
  alpha: 1
  d: 0.1
bb:
  - alpha: 1
    beta: 1
gp:
  - alpha: 1
    inv_beta: 1
nich:
  - mu: 0
    kappa: 1
    sigmasq: 1
    nu: 1
`

const testRowsJSONL = `{"id": 10, "row": {"observed": {"sparsity": "all"}, "booleans": [true], "counts": [3], "reals": [0.5]}}
{"id": 11, "row": {"observed": {"sparsity": "dense", "dense": [true, false, true]}, "booleans": [false], "reals": [-1.25]}}

{"row": {"observed": {"sparsity": "sparse", "sparse": [1]}, "counts": [7]}}
{"id": 13, "row": {"observed": {"sparsity": "none"}}}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-format", "none"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEncodeAndInfer(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.yaml", testModelYAML)
	jsonlPath := writeFile(t, dir, "rows.jsonl", testRowsJSONL)
	rowsPath := filepath.Join(dir, "rows.mixs.lz4")

	out, err := run(t, "encode", jsonlPath, rowsPath, "--model", modelPath)
	require.NoError(t, err)
	assert.Contains(t, out, "encoded 4 rows")

	outDir := filepath.Join(dir, "out")
	groupsPath := filepath.Join(outDir, "groups.mixs.zst")
	assignPath := filepath.Join(outDir, "assign.mixs.zst")
	_, err = run(t, "infer", modelPath, rowsPath, groupsPath, "--assign-out", assignPath, "--seed", "7", "--check-level", "strict")
	require.NoError(t, err)

	f, err := os.Open(modelPath)
	require.NoError(t, err)
	defer f.Close()
	m, err := mixture.LoadModel(f, mixture.FormatYAML, nil)
	require.NoError(t, err)

	eng, err := mixgo.New(m)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, eng.Load(ctx, blobstore.NewLocalStore(outDir), "groups.mixs.zst", "assign.mixs.zst"))
	assert.Equal(t, uint64(4), eng.Mixture().SampleSize())
	assert.Equal(t, 4, eng.Assignments().Len())
	// The id-less row on line 4 is numbered 3.
	for _, id := range []uint64{10, 11, 3, 13} {
		_, ok := eng.Assignments().Group(id)
		assert.True(t, ok, "row %d", id)
	}

	t.Run("Resume", func(t *testing.T) {
		resumed := filepath.Join(outDir, "groups2.mixs")
		_, err := run(t, "infer", modelPath, filepath.Join(dir, "more.mixs"), resumed,
			"--groups-in", groupsPath, "--assign-in", assignPath)
		require.Error(t, err, "more.mixs does not exist")

		// Same rows again under new ids.
		jsonl := strings.ReplaceAll(testRowsJSONL, `"id": 1`, `"id": 2`)
		jsonl = strings.Replace(jsonl, `{"row"`, `{"id": 99, "row"`, 1)
		writeFile(t, dir, "more.jsonl", jsonl)
		_, err = run(t, "encode", filepath.Join(dir, "more.jsonl"), filepath.Join(dir, "more.mixs"))
		require.NoError(t, err)

		_, err = run(t, "infer", modelPath, filepath.Join(dir, "more.mixs"), resumed,
			"--groups-in", groupsPath, "--assign-in", assignPath, "--assign-out", filepath.Join(outDir, "assign2.mixs"))
		require.NoError(t, err)

		eng, err := mixgo.New(m)
		require.NoError(t, err)
		require.NoError(t, eng.Load(ctx, blobstore.NewLocalStore(outDir), "groups2.mixs", "assign2.mixs"))
		assert.Equal(t, uint64(8), eng.Mixture().SampleSize())
	})
}

func TestInferErrors(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.yaml", testModelYAML)
	jsonlPath := writeFile(t, dir, "rows.jsonl", testRowsJSONL)
	rowsPath := filepath.Join(dir, "rows.mixs")
	_, err := run(t, "encode", jsonlPath, rowsPath)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "MalformedModel",
			args: []string{"infer", writeFile(t, dir, "bad.yaml", "clustering: [1, 2]\n"), rowsPath, filepath.Join(dir, "g.mixs")},
			want: "invalid model",
		},
		{
			name: "UnknownField",
			args: []string{"infer", writeFile(t, dir, "unknown.json", `{"clustering": {"alpha": 1}, "xx": []}`), rowsPath, filepath.Join(dir, "g.mixs")},
			want: "invalid model",
		},
		{
			name: "MissingRows",
			args: []string{"infer", modelPath, filepath.Join(dir, "missing.mixs"), filepath.Join(dir, "g.mixs")},
			want: "open rows",
		},
		{
			name: "RowsNotMatchingModel",
			args: []string{"infer", writeFile(t, dir, "gp.yaml", "clustering: {alpha: 1}\ngp: [{alpha: 1, inv_beta: 1}]\n"), rowsPath, filepath.Join(dir, "g.mixs")},
			want: "schema violation",
		},
		{
			name: "BadCheckLevel",
			args: []string{"infer", modelPath, rowsPath, filepath.Join(dir, "g.mixs"), "--check-level", "paranoid"},
			want: "unknown check level",
		},
		{
			name: "AssignOutElsewhere",
			args: []string{"infer", modelPath, rowsPath, filepath.Join(dir, "g.mixs"), "--assign-out", filepath.Join(dir, "sub", "a.mixs")},
			want: "same directory",
		},
		{
			name: "AssignInWithoutGroupsIn",
			args: []string{"infer", modelPath, rowsPath, filepath.Join(dir, "g.mixs"), "--assign-in", filepath.Join(dir, "a.mixs")},
			want: "requires --groups-in",
		},
		{
			name: "MinioWithoutEndpoint",
			args: []string{"infer", modelPath, rowsPath, "minio://bucket/g.mixs"},
			want: "--minio-endpoint",
		},
		{
			name: "WrongArgCount",
			args: []string{"infer", modelPath},
			want: "accepts 3 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err = os.Stat(filepath.Join(dir, "g.mixs"))
	assert.True(t, os.IsNotExist(err), "failed runs must not leave output")
}

func TestEncodeErrors(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.yaml", testModelYAML)

	t.Run("BadJSON", func(t *testing.T) {
		in := writeFile(t, dir, "bad.jsonl", "{\"row\": \n")
		_, err := run(t, "encode", in, filepath.Join(dir, "out.mixs"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("SchemaMismatch", func(t *testing.T) {
		in := writeFile(t, dir, "short.jsonl", `{"row": {"observed": {"sparsity": "all"}, "counts": [1]}}`+"\n")
		_, err := run(t, "encode", in, filepath.Join(dir, "out.mixs"), "--model", modelPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema violation")
	})

	_, err := os.Stat(filepath.Join(dir, "out.mixs"))
	assert.True(t, os.IsNotExist(err))
}
