// Command smoke probes a running instance and verifies the read-only
// endpoints answer with well-formed envelopes. Intended for post-deploy
// checks; exits non-zero when a critical probe fails.
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

type probe struct {
	Method   string
	Path     string
	Critical bool
	// WantEnvelope requires the body to parse as the shared response
	// envelope with either data or error set.
	WantEnvelope bool
}

type outcome struct {
	Probe    probe
	Status   int
	Healthy  bool
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Method: http.MethodGet, Path: "/health", Critical: true},
		{Method: http.MethodGet, Path: "/metrics", Critical: false},
		{Method: http.MethodGet, Path: prefix + "/auth-status", Critical: true, WantEnvelope: true},
		{Method: http.MethodGet, Path: prefix + "/email-history", Critical: true, WantEnvelope: true},
		{Method: http.MethodGet, Path: prefix + "/email-history?limit=1&offset=0", Critical: false, WantEnvelope: true},
	}

	client := &http.Client{Timeout: timeout}
	failed := 0

	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, p := range probes {
		res := run(client, base, p)
		status := "OK"
		if !res.Healthy {
			status = "FAIL"
			if p.Critical {
				failed++
			}
		}
		fmt.Printf("[%s] %s %s\n", status, p.Method, p.Path)
		fmt.Printf("  Status: %d (%s)\n", res.Status, res.Duration)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
		}
	}

	if failed > 0 {
		fmt.Printf("Critical failures: %d\n", failed)
		os.Exit(1)
	}
	fmt.Println("All critical probes passed")
}

func run(client *http.Client, base string, p probe) outcome {
	res := outcome{Probe: p}

	url := strings.TrimRight(base, "/") + p.Path
	req, err := http.NewRequest(p.Method, url, nil)
	if err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close() //nolint:errcheck

	res.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return res
	}

	if p.WantEnvelope {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			res.Err = fmt.Errorf("read body: %w", err)
			return res
		}
		var envelope struct {
			Data  json.RawMessage `json:"data"`
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			res.Err = fmt.Errorf("body is not an envelope: %w", err)
			return res
		}
		if len(envelope.Data) == 0 && len(envelope.Error) == 0 {
			res.Err = fmt.Errorf("envelope has neither data nor error")
			return res
		}
	}

	res.Healthy = true
	return res
}
