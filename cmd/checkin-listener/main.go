package main

import (
	"fmt"
	"os"

	"github.com/yndnr/provisiond-go/internal/cli/command"
)

func main() {
	if err := command.CheckinApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
