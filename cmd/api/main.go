package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kallbadhuset/bastubokning/internal/app"
)

func main() {
	// Absent .env is fine in deployed environments; config comes from real
	// environment variables there.
	_ = godotenv.Load()

	err := app.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
