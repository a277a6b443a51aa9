package main

import (
	"os"

	"github.com/BihanDasgupta/CareerNodes/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
