package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(id.String(), "ana", nil, "hash", "uploader", true, now, now))

	user, err := NewUserRepo(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Nil(t, user.Email)
	assert.Equal(t, domain.RoleUploader, user.Role)
}

func TestUserRepo_Create_Duplicates(t *testing.T) {
	tests := []struct {
		dbErr string
		want  error
	}{
		{`ERROR: duplicate key value violates unique constraint "users_username_key"`, domain.ErrDuplicateUsername},
		{`ERROR: duplicate key value violates unique constraint "users_email_key"`, domain.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New(tt.dbErr))

		err := NewUserRepo(db).Create(context.Background(), &domain.User{Username: "ana", Role: domain.RoleUser})
		assert.ErrorIs(t, err, tt.want)
	}
}

func TestUploadedFileRepo_List_Owner(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM uploaded_files WHERE user_id = $1")).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM uploaded_files WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs(owner, 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "filename", "original_filename", "s3_key", "file_size",
			"content_type", "param1", "param2", "row_count", "upload_status", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), owner.String(), "f.csv", "ventas.csv", "uploads/x", 10, "text/csv", "a", "b", 4, "completed", now, now))

	files, total, err := NewUploadedFileRepo(db).List(context.Background(), &owner, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, files, 1)
	assert.Equal(t, "ventas.csv", files[0].OriginalFilename)
	assert.Equal(t, domain.UploadStatusCompleted, files[0].UploadStatus)
}

func TestUploadedFileRepo_List_All(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM uploaded_files")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM uploaded_files ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	files, total, err := NewUploadedFileRepo(db).List(context.Background(), nil, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestUploadedFileRepo_UpdateStatus_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectExec("UPDATE uploaded_files SET upload_status").
		WithArgs(domain.UploadStatusFailed, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUploadedFileRepo(db).UpdateStatus(context.Background(), id, domain.UploadStatusFailed)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestCSVRowRepo_CreateBatch_Chunks(t *testing.T) {
	db, mock := newMockDB(t)
	fileID := uuid.New()
	rows := make([]domain.CSVRow, csvRowBatchSize+1)
	for i := range rows {
		rows[i] = domain.CSVRow{RowNumber: i + 2, Data: []byte(fmt.Sprintf(`{"n":"%d"}`, i))}
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO csv_rows").WillReturnResult(sqlmock.NewResult(0, csvRowBatchSize))
	mock.ExpectExec("INSERT INTO csv_rows").
		WithArgs(sqlmock.AnyArg(), fileID, csvRowBatchSize+2, fmt.Sprintf(`{"n":"%d"}`, csvRowBatchSize), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewCSVRowRepo(db).CreateBatch(context.Background(), fileID, rows))
	assert.Equal(t, fileID, rows[0].FileID)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
}

func TestCSVRowRepo_CreateBatch_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO csv_rows").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := NewCSVRowRepo(db).CreateBatch(context.Background(), uuid.New(), []domain.CSVRow{{RowNumber: 2, Data: []byte(`{}`)}})
	assert.ErrorContains(t, err, "disk full")
}

func TestCSVRowRepo_CreateBatch_Empty(t *testing.T) {
	db, _ := newMockDB(t)
	assert.NoError(t, NewCSVRowRepo(db).CreateBatch(context.Background(), uuid.New(), nil))
}

func TestFileValidationRepo_CreateBatch_KeepsOrder(t *testing.T) {
	db, mock := newMockDB(t)
	fileID := uuid.New()
	row := 4
	col := "precio"

	mock.ExpectExec("INSERT INTO file_validations").
		WithArgs(
			sqlmock.AnyArg(), fileID, 0, domain.ValidationDuplicateRow, &row, nil, "Fila duplicada (igual a fila 2)", domain.SeverityWarning, sqlmock.AnyArg(),
			sqlmock.AnyArg(), fileID, 1, domain.ValidationEmptyValue, &row, &col, "Valor vacío en columna 'precio'", domain.SeverityWarning, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := NewFileValidationRepo(db).CreateBatch(context.Background(), fileID, []domain.ValidationResult{
		{ValidationType: domain.ValidationDuplicateRow, RowNumber: &row, Message: "Fila duplicada (igual a fila 2)", Severity: domain.SeverityWarning},
		{ValidationType: domain.ValidationEmptyValue, RowNumber: &row, ColumnName: &col, Message: "Valor vacío en columna 'precio'", Severity: domain.SeverityWarning},
	})
	require.NoError(t, err)
}

func TestDocumentRepo_List_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM documents WHERE user_id = $1 AND analysis_status = $2 AND document_type = $3")).
		WithArgs(userID, domain.AnalysisStatusCompleted, domain.DocumentTypeInvoice).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $4 OFFSET $5")).
		WithArgs(userID, domain.AnalysisStatusCompleted, domain.DocumentTypeInvoice, 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := NewDocumentRepo(db).List(context.Background(), domain.DocumentFilter{
		UserID:       userID,
		Status:       domain.AnalysisStatusCompleted,
		DocumentType: domain.DocumentTypeInvoice,
	}, 40, 20)
	require.NoError(t, err)
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM documents WHERE id = $1")).WillReturnError(sql.ErrNoRows)

	_, err := NewDocumentRepo(db).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepo_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewDocumentRepo(db).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestExtractionRepo_GetInvoice(t *testing.T) {
	db, mock := newMockDB(t)
	docID := uuid.New()
	mock.ExpectQuery("FROM invoice_data WHERE document_id = \\$1").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows([]string{"client_name", "client_address", "provider_name", "provider_address",
			"invoice_number", "invoice_date", "invoice_total", "currency", "products"}).
			AddRow("ACME", nil, nil, nil, "F-1", "2024-03-01", 116.0, "MXN", []byte(`[{"quantity":1,"name":"Tornillo","unit_price":100,"total":100}]`)))

	inv, err := NewExtractionRepo(db).GetInvoice(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", *inv.ClientName)
	assert.Nil(t, inv.ClientAddress)
	assert.Equal(t, 116.0, *inv.InvoiceTotal)
	require.Len(t, inv.Products, 1)
	assert.Equal(t, "Tornillo", *inv.Products[0].Name)
}

func TestExtractionRepo_GetInfo_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM info_data").WillReturnError(sql.ErrNoRows)

	_, err := NewExtractionRepo(db).GetInfo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractionRepo_SaveInfo_NilTopics(t *testing.T) {
	db, mock := newMockDB(t)
	docID := uuid.New()
	mock.ExpectExec("INSERT INTO info_data").
		WithArgs(docID, nil, nil, nil, nil, "[]", "texto").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewExtractionRepo(db).SaveInfo(context.Background(), docID, &domain.InfoData{}, "texto"))
}

func TestEventLogRepo_List_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	filter := domain.EventFilter{
		EventType:         domain.EventTypeUserInteraction,
		DescriptionSearch: "50%_off",
		DateFrom:          &from,
		UserID:            &userID,
	}

	where := " WHERE e.event_type = $1 AND e.description ILIKE $2 AND e.created_at >= $3 AND e.user_id = $4"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM event_logs e" + where)).
		WithArgs(domain.EventTypeUserInteraction, `%50\%\_off%`, from, userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY e.created_at DESC LIMIT $5 OFFSET $6")).
		WithArgs(domain.EventTypeUserInteraction, `%50\%\_off%`, from, userID, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "description", "user_id", "username", "document_id", "metadata", "created_at"}).
			AddRow(uuid.NewString(), "interaccion_usuario", "Interacción de usuario: 50%_off", userID.String(), "ana", nil, []byte(`{}`), from))

	events, total, err := NewEventLogRepo(db).List(context.Background(), filter, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "ana", *events[0].Username)
	assert.Nil(t, events[0].DocumentID)
}

func TestEventLogRepo_List_Unbounded(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM event_logs e")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users u ON u.id = e.user_id ORDER BY e.created_at DESC")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := NewEventLogRepo(db).List(context.Background(), domain.EventFilter{}, 0, 0)
	require.NoError(t, err)
}

func TestEventLogRepo_CountByType(t *testing.T) {
	db, mock := newMockDB(t)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.event_type, COUNT(*) AS count FROM event_logs e WHERE e.created_at <= $1 GROUP BY e.event_type")).
		WithArgs(to).
		WillReturnRows(sqlmock.NewRows([]string{"event_type", "count"}).
			AddRow("subida_documento", 4).
			AddRow("sistema", 1))

	counts, err := NewEventLogRepo(db).CountByType(context.Background(), nil, &to)
	require.NoError(t, err)
	assert.Equal(t, map[domain.EventType]int{domain.EventTypeDocumentUpload: 4, domain.EventTypeSystem: 1}, counts)
}

func TestEventLogRepo_Create_DefaultsMetadata(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO event_logs").
		WithArgs(sqlmock.AnyArg(), domain.EventTypeSystem, "Servidor iniciado", nil, nil, "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &domain.EventLog{EventType: domain.EventTypeSystem, Description: "Servidor iniciado"}
	require.NoError(t, NewEventLogRepo(db).Create(context.Background(), event))
	assert.NotEqual(t, uuid.Nil, event.ID)
}
