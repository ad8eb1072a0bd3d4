// Command meshpath plans geodesic paths on triangle meshes loaded from OBJ
// or YAML files.
//
// Usage:
//
//	meshpath plan  --mesh terrain.obj --start 0.2,0.3,0 --goal 8.7,7.4,0 [--config planner.yaml]
//	meshpath batch --mesh terrain.obj --queries queries.yaml [--parallel 4]
//
// Results are written to stdout as JSON; logs go to stderr.
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
		fmt.Fprintln(os.Stderr, "meshpath:", err)
		stop()
		os.Exit(1)
	}
}
