package main

import (
	"os"

	dtreecmder "github.com/opsbrain/dtree/cmd/dtree"
)

func main() {
	cmd := dtreecmder.NewDtreeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
