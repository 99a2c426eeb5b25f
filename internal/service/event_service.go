package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"onecore/internal/domain"
	"onecore/internal/export"
	"onecore/internal/port"
)

// EventTypeInfo describes an event type for clients building filters.
type EventTypeInfo struct {
	Value domain.EventType `json:"value"`
	Label string           `json:"label"`
}

// EventService records and queries the audit trail. The Log* helpers never
// return errors: a failed write is logged and the caller carries on.
type EventService interface {
	LogDocumentUpload(ctx context.Context, docID uuid.UUID, filename string, userID uuid.UUID)
	LogAIAnalysis(ctx context.Context, docID uuid.UUID, docType string, userID *uuid.UUID, analysisErr error)
	LogUserInteraction(ctx context.Context, action string, userID uuid.UUID, docID *uuid.UUID, details map[string]any)
	LogSystem(ctx context.Context, description string, metadata map[string]any)

	List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error)
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error)
	Types() []EventTypeInfo
	Stats(ctx context.Context, from, to *time.Time) (*domain.EventStats, error)
	Export(ctx context.Context, w io.Writer, filter domain.EventFilter, requestedBy uuid.UUID) error
}

type eventService struct {
	repo port.EventLogRepository
}

// NewEventService creates a new EventService implementation.
func NewEventService(repo port.EventLogRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) record(ctx context.Context, event *domain.EventLog, metadata map[string]any) {
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("eventService.record: encoding metadata for %s: %v", event.EventType, err)
		} else {
			event.Metadata = data
		}
	}
	if err := s.repo.Create(ctx, event); err != nil {
		log.Printf("eventService.record: failed to log %s event %q: %v", event.EventType, event.Description, err)
	}
}

func (s *eventService) LogDocumentUpload(ctx context.Context, docID uuid.UUID, filename string, userID uuid.UUID) {
	s.record(ctx, &domain.EventLog{
		EventType:   domain.EventTypeDocumentUpload,
		Description: fmt.Sprintf("Documento '%s' subido exitosamente", filename),
		UserID:      &userID,
		DocumentID:  &docID,
	}, map[string]any{"filename": filename})
}

func (s *eventService) LogAIAnalysis(ctx context.Context, docID uuid.UUID, docType string, userID *uuid.UUID, analysisErr error) {
	event := &domain.EventLog{
		EventType:  domain.EventTypeAIAnalysis,
		UserID:     userID,
		DocumentID: &docID,
	}
	metadata := map[string]any{"document_type": docType, "success": analysisErr == nil, "error": nil}
	if analysisErr != nil {
		event.Description = fmt.Sprintf("Error en análisis IA: %v", analysisErr)
		metadata["error"] = analysisErr.Error()
	} else {
		event.Description = fmt.Sprintf("Análisis IA completado. Documento clasificado como: %s", docType)
	}
	s.record(ctx, event, metadata)
}

func (s *eventService) LogUserInteraction(ctx context.Context, action string, userID uuid.UUID, docID *uuid.UUID, details map[string]any) {
	s.record(ctx, &domain.EventLog{
		EventType:   domain.EventTypeUserInteraction,
		Description: "Interacción de usuario: " + action,
		UserID:      &userID,
		DocumentID:  docID,
	}, details)
}

func (s *eventService) LogSystem(ctx context.Context, description string, metadata map[string]any) {
	s.record(ctx, &domain.EventLog{
		EventType:   domain.EventTypeSystem,
		Description: description,
	}, metadata)
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error) {
	if filter.EventType != "" && !domain.ValidEventType(filter.EventType) {
		return nil, 0, domain.ErrInvalidFilter
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, 0, domain.ErrInvalidFilter
	}
	events, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("eventService.List: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error) {
	return s.repo.GetByID(ctx, eventID)
}

func (s *eventService) Types() []EventTypeInfo {
	out := make([]EventTypeInfo, 0, len(domain.AllEventTypes))
	for _, t := range domain.AllEventTypes {
		out = append(out, EventTypeInfo{Value: t, Label: t.Label()})
	}
	return out
}

func (s *eventService) Stats(ctx context.Context, from, to *time.Time) (*domain.EventStats, error) {
	counts, err := s.repo.CountByType(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("eventService.Stats: %w", err)
	}

	stats := &domain.EventStats{ByType: make(map[string]int, len(domain.AllEventTypes))}
	for _, t := range domain.AllEventTypes {
		stats.ByType[t.Label()] = 0
	}
	for t, n := range counts {
		stats.ByType[t.Label()] += n
		stats.Total += n
	}
	return stats, nil
}

func (s *eventService) Export(ctx context.Context, w io.Writer, filter domain.EventFilter, requestedBy uuid.UUID) error {
	s.LogUserInteraction(ctx, "Exportación de histórico a Excel", requestedBy, nil, map[string]any{
		"filters": exportFilterDetails(filter),
	})

	events, _, err := s.List(ctx, filter, 0, 0)
	if err != nil {
		return err
	}
	if err := export.WriteEvents(w, events); err != nil {
		return fmt.Errorf("eventService.Export: %w", err)
	}
	return nil
}

func exportFilterDetails(f domain.EventFilter) map[string]any {
	details := map[string]any{
		"event_type":         nil,
		"description_search": nil,
		"date_from":          nil,
		"date_to":            nil,
	}
	if f.EventType != "" {
		details["event_type"] = string(f.EventType)
	}
	if f.DescriptionSearch != "" {
		details["description_search"] = f.DescriptionSearch
	}
	if f.DateFrom != nil {
		details["date_from"] = f.DateFrom.Format(time.RFC3339)
	}
	if f.DateTo != nil {
		details["date_to"] = f.DateTo.Format(time.RFC3339)
	}
	return details
}
