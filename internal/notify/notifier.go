package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"hireloop/internal/config"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
)

// Notifier is the notification collaborator. Dispatches are fire-and-forget
// from the orchestration core's perspective: failures are logged, never
// propagated as core errors.
type Notifier interface {
	// SendSchedulingInvite notifies a candidate that an interview was requested,
	// including the one-time scheduling link.
	SendSchedulingInvite(ctx context.Context, candidate *models.Candidate, jobTitle, schedulingLink string) error

	// SendScheduleConfirmation confirms a booked interview slot to the candidate
	SendScheduleConfirmation(ctx context.Context, candidate *models.Candidate) error

	// SendResultsNotice notifies the operator that interview results are available
	SendResultsNotice(ctx context.Context, candidate *models.Candidate) error
}

// event is the payload posted to the notification webhook
type event struct {
	Type           string `json:"type"`
	CandidateID    string `json:"candidate_id"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	JobTitle       string `json:"job_title,omitempty"`
	SchedulingLink string `json:"scheduling_link,omitempty"`
	MeetingLink    string `json:"meeting_link,omitempty"`
	Datetime       string `json:"datetime,omitempty"`
}

// WebhookNotifier delivers notification events to the recruiting application's
// webhook, which owns templating and email delivery.
type WebhookNotifier struct {
	config     *config.Config
	httpClient *http.Client
	logger     logging.Logger
}

// NewWebhookNotifier creates a webhook-backed notifier
func NewWebhookNotifier(cfg *config.Config) *WebhookNotifier {
	return &WebhookNotifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Notifications.Timeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// SendSchedulingInvite posts a scheduling_invite event to the webhook
func (n *WebhookNotifier) SendSchedulingInvite(ctx context.Context, candidate *models.Candidate, jobTitle, schedulingLink string) error {
	return n.post(ctx, event{
		Type:           "scheduling_invite",
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateEmail: candidate.Email,
		JobTitle:       jobTitle,
		SchedulingLink: schedulingLink,
	})
}

// SendScheduleConfirmation posts a schedule_confirmed event to the webhook
func (n *WebhookNotifier) SendScheduleConfirmation(ctx context.Context, candidate *models.Candidate) error {
	evt := event{
		Type:           "schedule_confirmed",
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateEmail: candidate.Email,
		MeetingLink:    candidate.MeetingLink,
	}
	if candidate.InterviewDatetime != nil {
		evt.Datetime = candidate.InterviewDatetime.Format("2006-01-02T15:04:05Z07:00")
	}
	return n.post(ctx, evt)
}

// SendResultsNotice posts a results_ready event to the webhook
func (n *WebhookNotifier) SendResultsNotice(ctx context.Context, candidate *models.Candidate) error {
	return n.post(ctx, event{
		Type:           "results_ready",
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateEmail: candidate.Email,
	})
}

func (n *WebhookNotifier) post(ctx context.Context, evt event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.Notifications.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification webhook call failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Notification dispatched", map[string]interface{}{
		"type":         evt.Type,
		"candidate_id": evt.CandidateID,
	})
	return nil
}

// LogNotifier logs notification events instead of delivering them. Used when
// no webhook is configured.
type LogNotifier struct {
	logger logging.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.GetGlobalLogger()}
}

func (n *LogNotifier) SendSchedulingInvite(ctx context.Context, candidate *models.Candidate, jobTitle, schedulingLink string) error {
	n.logger.Info("Notification: scheduling invite", map[string]interface{}{
		"candidate_id":    candidate.ID,
		"job_title":       jobTitle,
		"scheduling_link": schedulingLink,
	})
	return nil
}

func (n *LogNotifier) SendScheduleConfirmation(ctx context.Context, candidate *models.Candidate) error {
	n.logger.Info("Notification: schedule confirmed", map[string]interface{}{
		"candidate_id": candidate.ID,
		"meeting_link": candidate.MeetingLink,
	})
	return nil
}

func (n *LogNotifier) SendResultsNotice(ctx context.Context, candidate *models.Candidate) error {
	n.logger.Info("Notification: results ready", map[string]interface{}{
		"candidate_id": candidate.ID,
	})
	return nil
}

// NewNotifier returns the webhook notifier when one is configured and enabled,
// otherwise the log-only notifier.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL != "" {
		return NewWebhookNotifier(cfg)
	}
	return NewLogNotifier()
}
