// Command sitesearch searches websites for text through a crawl-and-search
// service and keeps a resumable history of every search.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	defer func() {
		if err := cli.Shutdown(); err != nil {
			logger.Warn("closing history: %v", err)
		}
	}()

	if err := cli.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		return cli.ExitCode(err)
	}
	return 0
}
