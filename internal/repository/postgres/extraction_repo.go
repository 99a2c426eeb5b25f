package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onecore/internal/domain"
	"onecore/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

type invoiceRow struct {
	ClientName      *string         `db:"client_name"`
	ClientAddress   *string         `db:"client_address"`
	ProviderName    *string         `db:"provider_name"`
	ProviderAddress *string         `db:"provider_address"`
	InvoiceNumber   *string         `db:"invoice_number"`
	InvoiceDate     *string         `db:"invoice_date"`
	InvoiceTotal    *float64        `db:"invoice_total"`
	Currency        string          `db:"currency"`
	Products        json.RawMessage `db:"products"`
}

type infoRow struct {
	Description    *string         `db:"description"`
	Summary        *string         `db:"summary"`
	Sentiment      *string         `db:"sentiment"`
	SentimentScore *float64        `db:"sentiment_score"`
	KeyTopics      json.RawMessage `db:"key_topics"`
}

func (r *extractionRepo) SaveInvoice(ctx context.Context, docID uuid.UUID, data *domain.InvoiceData, rawText string) error {
	products := data.Products
	if products == nil {
		products = []domain.InvoiceProduct{}
	}
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveInvoice marshal products: %w", err)
	}

	query := `INSERT INTO invoice_data (document_id, client_name, client_address, provider_name,
		provider_address, invoice_number, invoice_date, invoice_total, currency, products, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (document_id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			client_address = EXCLUDED.client_address,
			provider_name = EXCLUDED.provider_name,
			provider_address = EXCLUDED.provider_address,
			invoice_number = EXCLUDED.invoice_number,
			invoice_date = EXCLUDED.invoice_date,
			invoice_total = EXCLUDED.invoice_total,
			currency = EXCLUDED.currency,
			products = EXCLUDED.products,
			raw_text = EXCLUDED.raw_text`

	_, err = r.db.ExecContext(ctx, query,
		docID, data.ClientName, data.ClientAddress, data.ProviderName, data.ProviderAddress,
		data.InvoiceNumber, data.InvoiceDate, data.InvoiceTotal, data.Currency,
		string(productsJSON), rawText)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveInvoice: %w", err)
	}
	return nil
}

func (r *extractionRepo) SaveInfo(ctx context.Context, docID uuid.UUID, data *domain.InfoData, rawText string) error {
	topics := data.KeyTopics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveInfo marshal topics: %w", err)
	}

	query := `INSERT INTO info_data (document_id, description, summary, sentiment, sentiment_score,
		key_topics, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (document_id) DO UPDATE SET
			description = EXCLUDED.description,
			summary = EXCLUDED.summary,
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			key_topics = EXCLUDED.key_topics,
			raw_text = EXCLUDED.raw_text`

	_, err = r.db.ExecContext(ctx, query,
		docID, data.Description, data.Summary, data.Sentiment, data.SentimentScore,
		string(topicsJSON), rawText)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveInfo: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetInvoice(ctx context.Context, docID uuid.UUID) (*domain.InvoiceData, error) {
	var row invoiceRow
	err := r.db.GetContext(ctx, &row,
		`SELECT client_name, client_address, provider_name, provider_address, invoice_number,
		invoice_date, invoice_total, currency, products FROM invoice_data WHERE document_id = $1`, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetInvoice: %w", err)
	}

	data := &domain.InvoiceData{
		ClientName:      row.ClientName,
		ClientAddress:   row.ClientAddress,
		ProviderName:    row.ProviderName,
		ProviderAddress: row.ProviderAddress,
		InvoiceNumber:   row.InvoiceNumber,
		InvoiceDate:     row.InvoiceDate,
		InvoiceTotal:    row.InvoiceTotal,
		Currency:        row.Currency,
		Products:        []domain.InvoiceProduct{},
	}
	if len(row.Products) > 0 {
		if err := json.Unmarshal(row.Products, &data.Products); err != nil {
			return nil, fmt.Errorf("extractionRepo.GetInvoice products: %w", err)
		}
	}
	return data, nil
}

func (r *extractionRepo) GetInfo(ctx context.Context, docID uuid.UUID) (*domain.InfoData, error) {
	var row infoRow
	err := r.db.GetContext(ctx, &row,
		`SELECT description, summary, sentiment, sentiment_score, key_topics
		FROM info_data WHERE document_id = $1`, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetInfo: %w", err)
	}

	data := &domain.InfoData{
		Description:    row.Description,
		Summary:        row.Summary,
		SentimentScore: row.SentimentScore,
		KeyTopics:      []string{},
	}
	if row.Sentiment != nil {
		s := domain.Sentiment(*row.Sentiment)
		data.Sentiment = &s
	}
	if len(row.KeyTopics) > 0 {
		if err := json.Unmarshal(row.KeyTopics, &data.KeyTopics); err != nil {
			return nil, fmt.Errorf("extractionRepo.GetInfo key_topics: %w", err)
		}
	}
	return data, nil
}

// DeleteByDocument removes any extraction stored for the document.
func (r *extractionRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM invoice_data WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("extractionRepo.DeleteByDocument invoice: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM info_data WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("extractionRepo.DeleteByDocument info: %w", err)
	}
	return nil
}
