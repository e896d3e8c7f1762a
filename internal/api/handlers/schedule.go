package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hireloop/internal/interview"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// ScheduleHandler handles POST /api/v1/schedule, the unauthenticated surface
// candidates reach through their one-time link. Error messages are written for
// candidates, not operators, and must distinguish a dead link from a bad date.
func ScheduleHandler(svc *interview.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		var req models.ScheduleRequest
		if err := c.Bind(&req); err != nil {
			return scheduleError(c, reqID, http.StatusBadRequest, "invalid_request", "We could not read your request. Please try the link from your invitation again.")
		}
		if err := requestValidator.Struct(&req); err != nil {
			return scheduleError(c, reqID, http.StatusBadRequest, "invalid_request", "Both the scheduling token and an interview time are required.")
		}

		when, err := time.Parse(time.RFC3339, req.Datetime)
		if err != nil {
			return scheduleError(c, reqID, http.StatusBadRequest, "invalid_datetime", "The interview time must be a valid RFC3339 timestamp, for example 2026-09-15T14:00:00Z.")
		}

		candidate, err := svc.Schedule(c.Request().Context(), req.Token, when)
		if err != nil {
			switch utils.KindOf(err) {
			case utils.KindNotFound, utils.KindConflict:
				// A consumed token reads the same as an unknown one
				return scheduleError(c, reqID, http.StatusNotFound, "link_expired", "This scheduling link is no longer valid. It may have already been used, or the interview was cancelled.")
			case utils.KindValidation:
				return scheduleError(c, reqID, http.StatusBadRequest, "invalid_datetime", "Please pick an interview time in the future.")
			default:
				logger.Error("Scheduling failed", map[string]interface{}{
					"request_id": reqID,
					"error":      err.Error(),
				})
				return scheduleError(c, reqID, http.StatusInternalServerError, "internal_error", "Something went wrong on our side. Please try again in a few minutes.")
			}
		}

		return c.JSON(http.StatusOK, models.ScheduleResponse{
			Success:     true,
			MeetingLink: candidate.MeetingLink,
			Datetime:    *candidate.InterviewDatetime,
		})
	}
}

func scheduleError(c echo.Context, reqID string, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: reqID,
		Timestamp: time.Now(),
	})
}
