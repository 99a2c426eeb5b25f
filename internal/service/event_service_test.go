package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"onecore/internal/domain"
	"onecore/internal/export"
	"onecore/internal/service"
	"onecore/mocks"
)

func TestEventService_LogDocumentUpload(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	docID, userID := uuid.New(), uuid.New()

	var got *domain.EventLog
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*domain.EventLog) }).
		Return(nil)

	svc.LogDocumentUpload(context.Background(), docID, "factura.pdf", userID)

	require.NotNil(t, got)
	assert.Equal(t, domain.EventTypeDocumentUpload, got.EventType)
	assert.Equal(t, "Documento 'factura.pdf' subido exitosamente", got.Description)
	assert.Equal(t, &docID, got.DocumentID)
	assert.Equal(t, &userID, got.UserID)
	assert.JSONEq(t, `{"filename":"factura.pdf"}`, string(got.Metadata))
}

func TestEventService_LogAIAnalysis(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	docID := uuid.New()

	var events []*domain.EventLog
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { events = append(events, args.Get(1).(*domain.EventLog)) }).
		Return(nil)

	svc.LogAIAnalysis(context.Background(), docID, "factura", nil, nil)
	svc.LogAIAnalysis(context.Background(), docID, "unknown", nil, errors.New("db down"))

	require.Len(t, events, 2)
	assert.Equal(t, "Análisis IA completado. Documento clasificado como: factura", events[0].Description)
	assert.JSONEq(t, `{"document_type":"factura","success":true,"error":null}`, string(events[0].Metadata))
	assert.Nil(t, events[0].UserID)

	assert.Equal(t, "Error en análisis IA: db down", events[1].Description)
	assert.JSONEq(t, `{"document_type":"unknown","success":false,"error":"db down"}`, string(events[1].Metadata))
}

func TestEventService_LogUserInteractionWithoutDetails(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.EventLog) bool {
		return e.EventType == domain.EventTypeUserInteraction &&
			e.Description == "Interacción de usuario: Descarga de documento" &&
			e.Metadata == nil
	})).Return(nil)

	svc.LogUserInteraction(context.Background(), "Descarga de documento", uuid.New(), nil, nil)

	repo.AssertExpectations(t)
}

func TestEventService_LogFailureIsSwallowed(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	assert.NotPanics(t, func() {
		svc.LogSystem(context.Background(), "Servidor iniciado", map[string]any{"version": "dev"})
	})
	repo.AssertExpectations(t)
}

func TestEventService_List_RejectsBadFilters(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, _, err := svc.List(context.Background(), domain.EventFilter{EventType: "login"}, 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	_, _, err = svc.List(context.Background(), domain.EventFilter{DateFrom: &from, DateTo: &to}, 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventService_Stats(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	repo.On("CountByType", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(map[domain.EventType]int{
		domain.EventTypeDocumentUpload: 4,
		domain.EventTypeAIAnalysis:     3,
	}, nil)

	stats, err := svc.Stats(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 4, stats.ByType["Subida de Documento"])
	assert.Equal(t, 3, stats.ByType["Análisis IA"])
	assert.Equal(t, 0, stats.ByType["Sistema"])
	assert.Len(t, stats.ByType, 4)
}

func TestEventService_Types(t *testing.T) {
	types := service.NewEventService(new(mocks.MockEventLogRepo)).Types()

	require.Len(t, types, 4)
	assert.Equal(t, domain.EventTypeDocumentUpload, types[0].Value)
	assert.Equal(t, "Subida de Documento", types[0].Label)
	assert.Equal(t, "Sistema", types[3].Label)
}

func TestEventService_Export(t *testing.T) {
	repo := new(mocks.MockEventLogRepo)
	svc := service.NewEventService(repo)
	admin := uuid.New()
	filter := domain.EventFilter{EventType: domain.EventTypeSystem}

	var logged *domain.EventLog
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { logged = args.Get(1).(*domain.EventLog) }).
		Return(nil)
	repo.On("List", mock.Anything, filter, 0, 0).Return([]domain.EventLog{
		{ID: uuid.New(), EventType: domain.EventTypeSystem, Description: "Servidor iniciado", CreatedAt: time.Now()},
	}, 1, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf, filter, admin))

	require.NotNil(t, logged)
	assert.Equal(t, "Interacción de usuario: Exportación de histórico a Excel", logged.Description)
	var meta map[string]map[string]any
	require.NoError(t, json.Unmarshal(logged.Metadata, &meta))
	assert.Equal(t, "sistema", meta["filters"]["event_type"])
	assert.Nil(t, meta["filters"]["date_from"])

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
