package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Simple health check utility for the running indexer process

func main() {
	url := flag.String("url", "http://localhost:8080/health", "Health endpoint URL")
	flag.Parse()

	fmt.Println("swaparc Health Check Utility")
	fmt.Println("----------------------------")

	healthy, err := checkServiceHealth(*url)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	if healthy {
		fmt.Println("Service is healthy!")
	} else {
		fmt.Println("Service is NOT healthy!")
	}
}

func checkServiceHealth(url string) (bool, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body["status"] == "ok", nil
}
