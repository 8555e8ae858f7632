// Command mixgo runs product-mixture inference over a row stream.
//
//	mixgo encode rows.jsonl rows.mixs --model model.yaml
//	mixgo infer model.yaml rows.mixs groups.mixs.zst --assign-out assign.mixs.zst
//
// Locations may be local paths, s3://bucket/key or minio://bucket/key.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mixgo: %v\n", err)
		stop()
		os.Exit(1)
	}
}
