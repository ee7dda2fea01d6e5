// Package main provides a CLI tool for validating crowdlog server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	method      string
	body        string
	contentType string
	contains    []string
}

// sampleImport loads the embedded sample so the read endpoints have data
var sampleImport = endpoint{path: "/api/import/sample", method: "POST", contentType: "application/json", contains: []string{`"records"`}}

var endpoints = []endpoint{
	// Dataset and state
	{path: "/api/dataset", method: "GET", contentType: "application/json", contains: []string{`"months"`, `"period"`}},
	{path: "/api/filters", method: "GET", contentType: "application/json", contains: []string{`"sort_modes"`}},

	// Facets
	{path: "/api/facets/project", method: "GET", contentType: "application/json", contains: []string{`"options"`}},
	{path: "/api/facets/department", method: "GET", contentType: "application/json", contains: []string{`"options"`}},
	{path: "/api/facets/employee?search=a", method: "GET", contentType: "application/json", contains: []string{`"options"`}},
	{path: "/api/facets/project/select-all", method: "POST", contentType: "application/json", contains: []string{`"changes"`}},

	// Period
	{path: "/api/period", method: "PUT", body: `{"start":"","end":""}`, contentType: "application/json", contains: []string{`"corrected":false`}},
	{path: "/api/period/reset", method: "POST", contentType: "application/json", contains: []string{`"period"`}},

	// Chart and summary
	{path: "/api/chart?mode=overall", method: "GET", contentType: "application/json", contains: []string{`"rows"`, `"total"`}},
	{path: "/api/chart?mode=project&unit=days", method: "GET", contentType: "application/json", contains: []string{`"axis_step"`}},
	{path: "/api/chart?mode=department", method: "GET", contentType: "application/json", contains: nil},
	{path: "/api/chart?mode=employee", method: "GET", contentType: "application/json", contains: []string{`"department"`}},
	{path: "/api/chart?mode=month&baseline=100", method: "GET", contentType: "application/json", contains: []string{`"baseline"`}},
	{path: "/api/summary?unit=hours", method: "GET", contentType: "application/json", contains: []string{`"planned_total"`}},
	{path: "/api/export.xlsx?mode=project", method: "GET", contentType: "spreadsheetml", contains: nil},

	// Saved filters
	{path: "/api/saved-filters", method: "GET", contentType: "application/json", contains: nil},

	// API
	{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/metrics", method: "GET", contentType: "text/plain", contains: []string{"crowdlog_imports_total"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	sample := flag.Bool("sample", false, "Import the embedded sample export first (replaces the current dataset)")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int
	var results []result

	checks := endpoints
	if *sample {
		checks = append([]endpoint{sampleImport}, endpoints...)
	}

	for _, ep := range checks {
		r := validateEndpoint(client, *url, ep, *verbose)
		results = append(results, r)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != http.StatusOK {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint, verbose bool) result {
	start := time.Now()

	var body io.Reader
	if ep.body != "" {
		body = strings.NewReader(ep.body)
	}
	req, err := http.NewRequest(ep.method, baseURL+ep.path, body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	if ep.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(respBody),
	}

	// Validate content type
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	// Validate JSON if expected
	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(respBody, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	// Validate required content
	for _, needle := range ep.contains {
		if !strings.Contains(string(respBody), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
