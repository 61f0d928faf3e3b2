package main

import (
	"flag"
	"log/slog"
	"os"

	"milan/internal/validation"
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.Parse()

	slog.Info("Starting API validation", "url", baseURL)

	validator := validation.NewContractValidator(baseURL)
	if err := validator.ValidateAll(); err != nil {
		slog.Error("Validation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Validation passed")
}
