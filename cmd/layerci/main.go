package main

import (
	layercmd "github.com/cr-imson-co/layer-updater/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	layercmd.SetVersionInfo(version, commit)
	layercmd.Execute()
}
