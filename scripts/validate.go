package main

import (
	"flag"

	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/validation"
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", validation.DefaultBaseURL, "Base URL for API validation")
	flag.Parse()

	logger.Init("info", "text")
	logger.Get().Info("Starting API validation", "base_url", baseURL)

	if err := validation.NewAPIValidator(baseURL).ValidateAll(); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}

	logger.Get().Info("Validation passed")
}
