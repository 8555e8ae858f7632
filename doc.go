// Package mixgo provides a Bayesian product-mixture inference engine.
//
// Rows are heterogeneous, partially observed records: boolean, count and
// real columns, each modeled by a conjugate feature model (Beta-Bernoulli,
// Dirichlet-discrete, Dirichlet-process-discrete, Gamma-Poisson and
// Normal-inverse-chi-squared). Rows are clustered under a Pitman-Yor prior;
// every cluster holds one sufficient-statistics group per column.
//
// # Quick Start
//
//	f, _ := os.Open("model.yaml")
//	m, _ := mixture.LoadModel(f, mixture.FormatYAML, nil)
//
//	eng, _ := mixgo.New(m, mixgo.WithSeed(1))
//	group, _ := eng.Add(ctx, rowID, &row)
//
// # Inference
//
// Infer streams rows from a RowSource, scores each against every group,
// samples a group and commits the row:
//
//	rows, err := eng.Infer(ctx, mixgo.NewRowReader(r))
//
// One group is always kept empty; sampling it opens a new cluster. Removing
// the last row of a cluster dissolves it and renumbers the last group into
// its place.
//
// # Persistence
//
// Dump writes groups and row assignments as framed, checksummed record
// streams to any blobstore.BlobStore, compressed by suffix:
//
//	store := blobstore.NewLocalStore("./out")
//	err := eng.Dump(ctx, store, "groups.mixs.zst", "assign.mixs.zst")
//
// Load restores both.
//
// # Observability
//
//	eng, _ := mixgo.New(m,
//	    mixgo.WithLogger(mixgo.NewJSONLogger(slog.LevelInfo)),
//	    mixgo.WithMetricsCollector(&mixgo.BasicMetricsCollector{}),
//	)
//
// # Errors
//
// Errors from sub-packages are translated so callers can test against
// ErrInvalidOperation, ErrSchemaViolation, ErrNotImplemented,
// ErrInvalidModel and ErrCorruptDump with errors.Is. A returned error means
// nothing was applied, unless the engine runs at value.CheckOff.
package mixgo
