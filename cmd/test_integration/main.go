package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	population := os.Getenv("POPULATION")
	if population == "" {
		population = "test"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Starting run...")
	var started struct {
		ID string `json:"id"`
	}
	payload := map[string]string{"population": population, "limit": "10"}
	if !sendRequest(baseURL, "POST", "/runs", payload, http.StatusAccepted, &started) || started.ID == "" {
		fmt.Println("FAILED: Start run")
		os.Exit(1)
	}
	fmt.Println("PASSED: Start run", started.ID)

	fmt.Println("2. Waiting for summary...")
	var run struct {
		Status string `json:"status"`
	}
	for i := 0; i < 60; i++ {
		if !sendRequest(baseURL, "GET", "/runs/"+started.ID, nil, http.StatusOK, &run) {
			fmt.Println("FAILED: Fetch run")
			os.Exit(1)
		}
		if run.Status == "finished" {
			break
		}
		time.Sleep(time.Second)
	}
	if run.Status != "finished" {
		fmt.Println("FAILED: Run did not finish")
		os.Exit(1)
	}
	fmt.Println("PASSED: Run finished")

	fmt.Println("3. Scraping metrics...")
	if !sendRequest(baseURL, "GET", "/metrics", nil, http.StatusOK, nil) {
		fmt.Println("FAILED: Metrics")
		os.Exit(1)
	}
	fmt.Println("PASSED: Metrics")
}

func sendRequest(baseURL, method, endpoint string, payload interface{}, want int, out interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Bad response: %v\n", err)
			return false
		}
	}
	return true
}
