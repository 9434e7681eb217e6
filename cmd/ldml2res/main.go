// ldml2res generates partitioned locale resource bundles and build manifests.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/ldml2res/internal/cli"
)

func main() {
	// An interrupt stops the build between datasets; a bundle being written
	// is finished or removed, never left partial.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx)

	stop()
	os.Exit(code)
}
