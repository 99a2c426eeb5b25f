package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onecore/internal/domain"
	"onecore/internal/port"
)

const eventColumns = `e.id, e.event_type, e.description, e.user_id, u.username, e.document_id,
	e.metadata, e.created_at`

type eventLogRepo struct {
	db *sqlx.DB
}

// NewEventLogRepo creates a new PostgreSQL-backed EventLogRepository.
func NewEventLogRepo(db *sqlx.DB) port.EventLogRepository {
	return &eventLogRepo{db: db}
}

func (r *eventLogRepo) Create(ctx context.Context, event *domain.EventLog) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	metadata := event.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_logs (id, event_type, description, user_id, document_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.EventType, event.Description, event.UserID, event.DocumentID,
		string(metadata), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("eventLogRepo.Create: %w", err)
	}
	return nil
}

func (r *eventLogRepo) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error) {
	var event domain.EventLog
	err := r.db.GetContext(ctx, &event,
		"SELECT "+eventColumns+" FROM event_logs e LEFT JOIN users u ON u.id = e.user_id WHERE e.id = $1",
		eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("eventLogRepo.GetByID: %w", err)
	}
	return &event, nil
}

// List returns events matching filter, newest first. A limit of zero or less
// returns every match.
func (r *eventLogRepo) List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error) {
	where, args := eventWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM event_logs e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("eventLogRepo.List count: %w", err)
	}

	query := "SELECT " + eventColumns + " FROM event_logs e LEFT JOIN users u ON u.id = e.user_id" +
		where + " ORDER BY e.created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	events := []domain.EventLog{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("eventLogRepo.List: %w", err)
	}
	return events, total, nil
}

func (r *eventLogRepo) CountByType(ctx context.Context, from, to *time.Time) (map[domain.EventType]int, error) {
	where, args := eventWhere(domain.EventFilter{DateFrom: from, DateTo: to})

	var rows []struct {
		EventType domain.EventType `db:"event_type"`
		Count     int              `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT e.event_type, COUNT(*) AS count FROM event_logs e"+where+" GROUP BY e.event_type", args...)
	if err != nil {
		return nil, fmt.Errorf("eventLogRepo.CountByType: %w", err)
	}

	counts := make(map[domain.EventType]int, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Count
	}
	return counts, nil
}

// eventWhere builds the WHERE clause shared by List and CountByType.
func eventWhere(filter domain.EventFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.EventType != "" {
		add("e.event_type = $%d", filter.EventType)
	}
	if filter.DescriptionSearch != "" {
		add("e.description ILIKE $%d", "%"+escapeLike(filter.DescriptionSearch)+"%")
	}
	if filter.DateFrom != nil {
		add("e.created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("e.created_at <= $%d", *filter.DateTo)
	}
	if filter.UserID != nil {
		add("e.user_id = $%d", *filter.UserID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
