package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"hireloop/internal/api/middleware"
	"hireloop/internal/interview"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

var requestValidator = validator.New()

// operatorFrom builds the operator identity from the authenticated request
func operatorFrom(c echo.Context) interview.Operator {
	return interview.Operator{OrganizationID: middleware.OrganizationID(c)}
}

// requestID returns the request id set by the validation middleware
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return utils.GenerateRequestID()
}

// respondError maps an application error onto the JSON error envelope
func respondError(c echo.Context, reqID string, err error) error {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.GetGlobalLogger().Error("Request failed", map[string]interface{}{
			"request_id": reqID,
			"path":       c.Request().URL.Path,
			"error":      err.Error(),
		})
	}
	return c.JSON(status, models.ErrorResponse{
		Error:     string(utils.KindOf(err)),
		Message:   err.Error(),
		RequestID: reqID,
		Timestamp: time.Now(),
	})
}

// ReviewHandler handles POST /api/v1/candidates/:id/review
func ReviewHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()
		startTime := time.Now()

		var req models.ReviewRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, reqID, utils.NewValidationError("invalid request body: "+err.Error()))
		}
		if err := requestValidator.Struct(&req); err != nil {
			return respondError(c, reqID, utils.NewValidationError(err.Error()))
		}

		logger.Info("Processing resume review request", map[string]interface{}{
			"request_id":   reqID,
			"candidate_id": c.Param("id"),
		})

		outcome, err := svc.MarkReviewed(c.Request().Context(), operatorFrom(c), c.Param("id"), req.ResumeText)
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.ReviewResponse{
			Success:       true,
			Status:        outcome.Candidate.InterviewStatus,
			Profile:       outcome.Profile,
			Match:         outcome.Match,
			UsedLLM:       outcome.UsedLLM,
			RequestID:     reqID,
			ProcessedTime: time.Since(startTime),
		})
	}
}

// TriggerHandler handles POST /api/v1/candidates/:id/interview
func TriggerHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		candidate, _, err := svc.Trigger(c.Request().Context(), operatorFrom(c), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.TriggerResponse{
			Success:   true,
			Status:    candidate.InterviewStatus,
			RequestID: reqID,
		})
	}
}

// CancelHandler handles POST /api/v1/candidates/:id/cancel
func CancelHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		candidate, err := svc.Cancel(c.Request().Context(), operatorFrom(c), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.TriggerResponse{
			Success:   true,
			Status:    candidate.InterviewStatus,
			RequestID: reqID,
		})
	}
}

// QuestionsHandler handles POST /api/v1/candidates/:id/questions
func QuestionsHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		// Body is optional; an empty body means no focus areas
		var req models.QuestionsRequest
		if c.Request().ContentLength > 0 {
			if err := c.Bind(&req); err != nil {
				return respondError(c, reqID, utils.NewValidationError("invalid request body: "+err.Error()))
			}
		}

		questions, err := svc.GenerateQuestions(c.Request().Context(), operatorFrom(c), c.Param("id"), req.FocusAreas)
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.QuestionsResponse{
			Success:   true,
			Questions: questions,
			RequestID: reqID,
		})
	}
}

// GetCandidateHandler handles GET /api/v1/candidates/:id
func GetCandidateHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		candidate, err := svc.Get(c.Request().Context(), operatorFrom(c), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, candidate)
	}
}
