package utils

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory when one exists.
// A missing file is not an error.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}
