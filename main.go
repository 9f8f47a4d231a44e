package main

import (
	"os"

	"github.com/pinecrest/jamfctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
