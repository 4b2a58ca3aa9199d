package main

import (
	"github.com/robotalks/boardlink/pkg/cli/sh"
	"github.com/robotalks/boardlink/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
