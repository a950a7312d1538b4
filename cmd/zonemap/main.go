package main

import (
	"os"

	"github.com/jengzang/zonemap-backend-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
