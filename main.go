package main

import (
	"github.com/sidkik/gitmover/cmd"
	"github.com/sidkik/gitmover/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
