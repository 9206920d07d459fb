// Package main is the single-binary entrypoint for LifeXP.
package main

import "github.com/lifexp-app/lifexp/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
