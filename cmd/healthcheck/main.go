package main

import (
	"net/http"
	"os"
	"time"

	"github.com/ericogr/dew-duel/internal/constants"
)

const defaultHealthURL = "http://127.0.0.1:8080/api/version"

func main() {
	url := os.Getenv(constants.EnvHealthURL)
	if url == "" {
		url = defaultHealthURL
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	// Consider any status < 500 as healthy
	if resp.StatusCode >= 500 {
		os.Exit(1)
	}
	os.Exit(0)
}
