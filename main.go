// Package main is the entry point for the basket CLI.
package main

import (
	"os"

	"github.com/huangsam/basket/cmd"
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		contract.LogWarn("Command failed", err)
		iocache.CloseCaching()
		os.Exit(1)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Failed to stop profiling", err)
	}
}
