package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hireloop/internal/interview"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// AgentCallbackHandler handles POST /api/v1/agent/callback, the machine
// endpoint the interview agent reports results to. The operation is
// idempotent: a retried callback for a completed candidate succeeds.
func AgentCallbackHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		var req models.AgentCallbackRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, reqID, utils.NewValidationError("invalid request body: "+err.Error()))
		}
		if err := requestValidator.Struct(&req); err != nil {
			return respondError(c, reqID, utils.NewValidationError(err.Error()))
		}

		candidate, alreadyDone, err := svc.Complete(c.Request().Context(), req.CandidateID, req.TranscriptURL, req.ReportURL)
		if err != nil {
			return respondError(c, reqID, err)
		}

		logger.Info("Agent callback processed", map[string]interface{}{
			"request_id":   reqID,
			"candidate_id": req.CandidateID,
			"duplicate":    alreadyDone,
		})

		return c.JSON(http.StatusOK, models.CallbackResponse{
			Success:       true,
			Status:        candidate.InterviewStatus,
			TranscriptURL: candidate.TranscriptURL,
			ReportURL:     candidate.ReportURL,
		})
	}
}
