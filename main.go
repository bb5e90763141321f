// Package main is the entry point for medley.
package main

import (
	"github.com/medley-cli/medley/cmd"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/internal/cache"
	"github.com/medley-cli/medley/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
