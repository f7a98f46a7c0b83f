package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// loadEnv reads .env from the working directory, then from the directory
// of the executable.
func loadEnv() error {
	if err := godotenv.Load(); err == nil {
		return nil
	}

	ex, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		return fmt.Errorf("failed to change directory: %w", err)
	}

	// A missing .env is fine, the process environment is enough.
	_ = godotenv.Load()
	return nil
}

func main() {
	if err := loadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := newCLIApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
