package main

import (
	"github.com/robotalks/dbgcon/pkg/cli/sh"
	"github.com/robotalks/dbgcon/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
