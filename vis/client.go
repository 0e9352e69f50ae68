// Package vis talks to the federation's live match-data API. The upstream
// payload is treated as opaque beyond the parsed score and status fields.
package vis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beachref/livesync/models"
)

// ErrRequestRejected marks responses where the upstream explicitly refused or
// failed the request. These are not retried within a pass; the next scheduled
// invocation is the retry.
var ErrRequestRejected = errors.New("upstream request rejected")

// LiveScore is the parsed live state of one match as reported upstream.
type LiveScore struct {
	MatchNo int                `json:"no"`
	Status  models.MatchStatus `json:"status"`
	Score   models.MatchScore  `json:"score"`
}

// Client fetches the current live score of a single match.
type Client interface {
	FetchLiveScore(ctx context.Context, matchNo int) (*LiveScore, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// Timeout bounds a single score fetch. The pass prefers many cheap calls
	// over few expensive ones, so this stays short.
	Timeout time.Duration
}

func NewHTTPClient(cfg ClientConfig) (Client, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, errors.New("invalid VIS client configuration: base URL and API key are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type liveScorePayload struct {
	No              int    `json:"no"`
	Status          string `json:"status"`
	MatchPointsA    int    `json:"matchPointsA"`
	MatchPointsB    int    `json:"matchPointsB"`
	PointsTeamASet1 int    `json:"pointsTeamASet1"`
	PointsTeamASet2 int    `json:"pointsTeamASet2"`
	PointsTeamASet3 int    `json:"pointsTeamASet3"`
	PointsTeamBSet1 int    `json:"pointsTeamBSet1"`
	PointsTeamBSet2 int    `json:"pointsTeamBSet2"`
	PointsTeamBSet3 int    `json:"pointsTeamBSet3"`
}

func (c *httpClient) FetchLiveScore(ctx context.Context, matchNo int) (*LiveScore, error) {
	url := fmt.Sprintf("%s/matches/%d/live", c.baseURL, matchNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build live score request for match %d: %w", matchNo, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Network-layer failure: timeout, reset, DNS. Left unwrapped beyond
		// context so the classifier sees the transport error.
		return nil, fmt.Errorf("live score request for match %d failed: %w", matchNo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live score request for match %d returned status %d: %w",
			matchNo, resp.StatusCode, ErrRequestRejected)
	}

	var payload liveScorePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode live score for match %d: %w", matchNo, err)
	}

	return &LiveScore{
		MatchNo: payload.No,
		Status:  models.MatchStatus(payload.Status),
		Score: models.MatchScore{
			MatchPointsA:   payload.MatchPointsA,
			MatchPointsB:   payload.MatchPointsB,
			PointsTeamASet: [3]int{payload.PointsTeamASet1, payload.PointsTeamASet2, payload.PointsTeamASet3},
			PointsTeamBSet: [3]int{payload.PointsTeamBSet1, payload.PointsTeamBSet2, payload.PointsTeamBSet3},
		},
	}, nil
}
