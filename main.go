package main

import "github.com/cmmoran/hdrport/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
