package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/domain"
)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRSVPsResponse is the data payload for GET /events/{eventID}/rsvps (200).
type ListRSVPsResponse struct {
	Items      []*domain.RSVP         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListRSVPsSuccessResponse is the success response envelope for GET /events/{eventID}/rsvps (200).
type ListRSVPsSuccessResponse struct {
	Data  ListRSVPsResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListRSVPs godoc
// @Summary List RSVPs for an event
// @Description Returns a paginated list of the current RSVP of every member who responded to the event, ordered by member id.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (digits)"
// @Param status query string false "Filter by status (going, maybe, declined)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListRSVPsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps [get]
func (c *RSVPController) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	filter := domain.RSVPFilter{Status: domain.RSVPStatus(r.URL.Query().Get("status"))}
	params := helpers.ParsePagination(r)

	list, total, err := c.Service.ListByEvent(r.Context(), domain.EventID(eventID), filter, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.RSVP{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRSVPsResponse{Items: list, Pagination: meta})
}

// SetRSVPRequest is the request body for PUT /events/{eventID}/rsvps/{memberID}.
type SetRSVPRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *SetRSVPRequest) Validate() []string {
	if r.Status == "" {
		return []string{"status is required"}
	}
	if !domain.RSVPStatus(r.Status).Valid() {
		return []string{"status must be one of going, maybe, declined"}
	}
	return nil
}

// SetRSVPSuccessResponse is the success response envelope for PUT /events/{eventID}/rsvps/{memberID} (200).
type SetRSVPSuccessResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SetRSVP godoc
// @Summary Set a member's RSVP
// @Description Inserts or replaces the member's RSVP for the event. Idempotent: repeating the request leaves the same state.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (digits)"
// @Param memberID path string true "Member ID (digits)"
// @Param body body controllers.SetRSVPRequest true "New status"
// @Success 200 {object} controllers.SetRSVPSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable_entity (unknown event or member)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps/{memberID} [put]
func (c *RSVPController) SetRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, memberID, ok := rsvpPathValues(w, r)
	if !ok {
		return
	}
	var req SetRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	rsvp, err := c.Service.Set(r.Context(), eventID, memberID, domain.RSVPStatus(req.Status))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// RemoveRSVPResponse is the data payload for DELETE /events/{eventID}/rsvps/{memberID} (200).
type RemoveRSVPResponse struct {
	Status string `json:"status"`
}

// RemoveRSVP godoc
// @Summary Remove a member's RSVP
// @Description Deletes the member's RSVP for the event so the member is undecided again. Reactions never remove RSVPs; this is the only way.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (digits)"
// @Param memberID path string true "Member ID (digits)"
// @Success 200 {object} helpers.APIResponse "data.status: removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps/{memberID} [delete]
func (c *RSVPController) RemoveRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, memberID, ok := rsvpPathValues(w, r)
	if !ok {
		return
	}
	if err := c.Service.Remove(r.Context(), eventID, memberID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RemoveRSVPResponse{Status: "removed"})
}

func rsvpPathValues(w http.ResponseWriter, r *http.Request) (domain.EventID, domain.MemberID, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", "", false
	}
	memberID := r.PathValue("memberID")
	if memberID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing memberID")
		return "", "", false
	}
	return domain.EventID(eventID), domain.MemberID(memberID), true
}

func (c *RSVPController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "rsvp not found")
	case errors.Is(err, domain.ErrRSVPConstraint):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeUnprocessableEntity, "unknown event or member")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
