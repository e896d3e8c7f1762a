package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"hireloop/internal/config"
	"hireloop/internal/logging"
	"hireloop/pkg/utils"
)

// Dispatcher hands a claimed interview to the external AI interview agent
type Dispatcher interface {
	Dispatch(ctx context.Context, candidateID, meetingLink string) error
}

// Client is the HTTP client for the external AI Interview Agent. The agent
// conducts the interview and reports results through the machine callback.
type Client struct {
	config     *config.Config
	httpClient *http.Client
	logger     logging.Logger
}

// DispatchRequest is the payload handed to the agent
type DispatchRequest struct {
	CandidateID string `json:"candidate_id"`
	MeetingLink string `json:"meeting_link"`
}

// NewClient creates a new agent client instance
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Agent.Timeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// Dispatch asks the agent to conduct the interview for a claimed candidate.
// The call is bounded by the configured agent timeout on top of ctx.
func (c *Client) Dispatch(ctx context.Context, candidateID, meetingLink string) error {
	if c.config.Agent.BaseURL == "" {
		return utils.NewUpstreamError("interview agent base URL not configured")
	}

	payload, err := json.Marshal(DispatchRequest{
		CandidateID: candidateID,
		MeetingLink: meetingLink,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	url := c.config.Agent.BaseURL + "/v1/interviews"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Agent.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Agent.APIKey)
	}

	c.logger.Info("Dispatching interview to agent", map[string]interface{}{
		"candidate_id": candidateID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.NewUpstreamError("agent dispatch failed: " + err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return utils.NewUpstreamError(fmt.Sprintf("agent dispatch returned status %d", resp.StatusCode))
	}

	c.logger.Info("Interview dispatched to agent", map[string]interface{}{
		"candidate_id": candidateID,
	})
	return nil
}
