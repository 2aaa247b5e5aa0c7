package main

import (
	"os"

	"github.com/soundprediction/quorum/cmd/quorum"
)

func main() {
	if err := quorum.Execute(); err != nil {
		os.Exit(1)
	}
}
