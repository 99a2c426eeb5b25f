package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onecore/internal/domain"
	"onecore/internal/export"
	"onecore/internal/service"
)

// EventHandler handles audit log endpoints.
type EventHandler struct {
	eventService service.EventService
	now          func() time.Time
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService, now: time.Now}
}

// parseTimeQuery parses an optional RFC 3339 query parameter.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
	}
	return &t, nil
}

// parseEventFilter reads the shared listing and export filters. Returns false
// if a parameter is malformed (error response already written).
func parseEventFilter(c *gin.Context) (domain.EventFilter, bool) {
	filter := domain.EventFilter{
		EventType:         domain.EventType(c.Query("event_type")),
		DescriptionSearch: c.Query("description_search"),
	}

	var err error
	if filter.DateFrom, err = parseTimeQuery(c, "date_from"); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return filter, false
	}
	if filter.DateTo, err = parseTimeQuery(c, "date_to"); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return filter, false
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid user_id")
			return filter, false
		}
		filter.UserID = &userID
	}
	return filter, true
}

// List handles GET /api/v1/events
// @Summary List events
// @Description List audit events, newest first
// @Tags events
// @Produce json
// @Param event_type query string false "Event type" Enums(subida_documento, analisis_ia, interaccion_usuario, sistema)
// @Param description_search query string false "Case-insensitive substring of the description"
// @Param date_from query string false "Lower bound (RFC 3339)"
// @Param date_to query string false "Upper bound (RFC 3339)"
// @Param user_id query string false "User ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(100)
// @Success 200 {object} Response{data=[]domain.EventLog,meta=PagMeta} "List of events"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter, ok := parseEventFilter(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	events, total, err := h.eventService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, events, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/events/:id
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} Response{data=domain.EventLog} "Event"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Event not found"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c *gin.Context) {
	eventID, ok := parseIDParam(c, "event")
	if !ok {
		return
	}

	event, err := h.eventService.GetByID(c.Request.Context(), eventID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, event)
}

// Types handles GET /api/v1/events/types
// @Summary List event types
// @Tags events
// @Produce json
// @Success 200 {object} Response{data=[]service.EventTypeInfo} "Event types with labels"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /events/types [get]
func (h *EventHandler) Types(c *gin.Context) {
	RespondOK(c, h.eventService.Types())
}

// Stats handles GET /api/v1/events/stats
// @Summary Event statistics
// @Description Total events and counts per event type label, optionally within a date range
// @Tags events
// @Produce json
// @Param date_from query string false "Lower bound (RFC 3339)"
// @Param date_to query string false "Upper bound (RFC 3339)"
// @Success 200 {object} Response{data=domain.EventStats} "Event statistics"
// @Failure 400 {object} ErrorResponseBody "Invalid date"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /events/stats [get]
func (h *EventHandler) Stats(c *gin.Context) {
	from, err := parseTimeQuery(c, "date_from")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	to, err := parseTimeQuery(c, "date_to")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	stats, err := h.eventService.Stats(c.Request.Context(), from, to)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

// Export handles GET /api/v1/events/export
// @Summary Export events to Excel
// @Description Download the filtered event history as an xlsx workbook
// @Tags events
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param event_type query string false "Event type"
// @Param description_search query string false "Case-insensitive substring of the description"
// @Param date_from query string false "Lower bound (RFC 3339)"
// @Param date_to query string false "Upper bound (RFC 3339)"
// @Param user_id query string false "User ID (UUID)"
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Admin role required"
// @Security BearerAuth
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	filter, ok := parseEventFilter(c)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.eventService.Export(c.Request.Context(), &buf, filter, caller.UserID); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.EventsFilename(h.now())))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
