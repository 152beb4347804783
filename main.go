// main is the entry point for the lagscan CLI.
package main

import (
	"os"

	"github.com/huangsam/lagscan/cmd"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.Logger().Error().Err(err).Msg("lagscan failed")
		// os.Exit skips deferred calls, so release stores first
		iocache.CloseStores()
		os.Exit(1)
	}
}
