package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"onecore/internal/domain"
)

const defaultCurrency = "MXN"

// StripCodeFence removes a markdown code fence around a model response. A
// fence labeled json takes precedence over a bare one; text without a fence is
// returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		return strings.TrimSpace(untilFence(text[i+len("```json"):]))
	}
	if i := strings.Index(text, "```"); i >= 0 {
		body := untilFence(text[i+3:])
		// Drop an unrecognized language tag such as "JSON" on the opening line.
		if nl := strings.IndexByte(body, '\n'); nl > 0 {
			tag := strings.TrimSpace(body[:nl])
			if tag != "" && !strings.ContainsAny(tag, "{[\" ") {
				body = body[nl+1:]
			}
		}
		return strings.TrimSpace(body)
	}
	return text
}

func untilFence(s string) string {
	if j := strings.Index(s, "```"); j >= 0 {
		return s[:j]
	}
	return s
}

type classification struct {
	DocumentType domain.DocumentType
	Confidence   float64
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &obj); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if obj == nil {
		return nil, errors.New("model response is not a JSON object")
	}
	return obj, nil
}

func parseClassification(text string) (*classification, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	docType := domain.DocumentTypeInfo
	if raw, ok := obj["document_type"]; ok && !isNull(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("document_type: %w", err)
		}
		switch t := domain.DocumentType(strings.ToLower(strings.TrimSpace(s))); t {
		case domain.DocumentTypeInvoice, domain.DocumentTypeInfo:
			docType = t
		default:
			return nil, fmt.Errorf("unexpected document_type %q", s)
		}
	}

	confidence := 0.5
	if raw, ok := obj["confidence"]; ok && !isNull(raw) {
		f := optFloat(raw)
		if f == nil {
			return nil, fmt.Errorf("confidence is not numeric: %s", raw)
		}
		confidence = clamp(*f, 0, 1)
	}

	return &classification{DocumentType: docType, Confidence: confidence}, nil
}

func parseInvoice(text string) (*domain.InvoiceData, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	inv := &domain.InvoiceData{
		ClientName:      optString(obj["client_name"]),
		ClientAddress:   optString(obj["client_address"]),
		ProviderName:    optString(obj["provider_name"]),
		ProviderAddress: optString(obj["provider_address"]),
		InvoiceNumber:   optString(obj["invoice_number"]),
		InvoiceDate:     optString(obj["invoice_date"]),
		InvoiceTotal:    optFloat(obj["invoice_total"]),
		Currency:        defaultCurrency,
		Products:        []domain.InvoiceProduct{},
	}
	if c := optString(obj["currency"]); c != nil && strings.TrimSpace(*c) != "" {
		inv.Currency = strings.TrimSpace(*c)
	}

	if raw, ok := obj["products"]; ok && !isNull(raw) {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("products: %w", err)
		}
		for _, p := range items {
			inv.Products = append(inv.Products, domain.InvoiceProduct{
				Quantity:  optFloat(p["quantity"]),
				Name:      optString(p["name"]),
				UnitPrice: optFloat(p["unit_price"]),
				Total:     optFloat(p["total"]),
			})
		}
	}
	return inv, nil
}

func parseInfo(text string) (*domain.InfoData, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	info := &domain.InfoData{
		Description: optString(obj["description"]),
		Summary:     optString(obj["summary"]),
		KeyTopics:   []string{},
	}

	if s := optString(obj["sentiment"]); s != nil {
		switch v := domain.Sentiment(strings.ToLower(strings.TrimSpace(*s))); v {
		case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
			info.Sentiment = &v
		}
	}
	if f := optFloat(obj["sentiment_score"]); f != nil {
		score := clamp(*f, -1, 1)
		info.SentimentScore = &score
	}

	if raw, ok := obj["key_topics"]; ok && !isNull(raw) {
		var topics []json.RawMessage
		if err := json.Unmarshal(raw, &topics); err != nil {
			return nil, fmt.Errorf("key_topics: %w", err)
		}
		for _, t := range topics {
			if s := optString(t); s != nil && *s != "" {
				info.KeyTopics = append(info.KeyTopics, *s)
			}
		}
	}
	return info, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// optString reads a JSON string. Numbers are kept in their literal form since
// models sometimes emit invoice numbers unquoted. Anything else is absent.
func optString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s
	}
	return nil
}

// optFloat reads a JSON number, or a string holding a plain number. Anything
// else is absent.
func optFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
