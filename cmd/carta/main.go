package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/openletters/carta/internal/cli"
)

func main() {
	// .env is optional, used for CARTA_* overrides during development
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
