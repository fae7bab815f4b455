// Package main is the entry point for scrubdeck.
package main

import (
	"github.com/samber/lo"
	"github.com/scrubdeck/scrubdeck/cmd"
	"github.com/scrubdeck/scrubdeck/config"
)

func main() {
	lo.Must0(config.Setup())

	cmd.Execute()
}
