// Package screening talks to the external CV screening service. The
// verdict it returns is attached to an application in its own transaction,
// strictly after the apply path has committed; nothing here ever runs
// inside a workflow critical section.
package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Client is a thin HTTP JSON client for the screening service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from SCREENING_URL, or returns nil when
// screening is not configured.
func NewClientFromEnv() *Client {
	baseURL := os.Getenv("SCREENING_URL")
	if baseURL == "" {
		return nil
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Request describes one application to screen.
type Request struct {
	ApplicationID  uint   `json:"application_id"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	Requirements   string `json:"requirements"`
	ResumeID       uint   `json:"resume_id"`
}

// Verdict is the screening service's answer. It is carried onto the
// application without interpretation.
type Verdict struct {
	Decision        string   `json:"decision"`
	Score           *float64 `json:"score"`
	MatchedPoints   []string `json:"matched_points"`
	UnmatchedPoints []string `json:"unmatched_points"`
}

// Screen submits one application for screening and returns the verdict.
func (c *Client) Screen(ctx context.Context, req Request) (*Verdict, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/screen", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("screening request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("screening service returned status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode screening verdict: %w", err)
	}
	return &verdict, nil
}
