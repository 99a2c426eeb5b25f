package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around json fence", "Aquí está:\n```json\n{\"a\":1}\n```\nSaludos", `{"a":1}`},
		{"upper case tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"json fence wins over earlier bare fence", "```\nnota\n```\n```json\n{\"b\":2}\n```", `{"b":2}`},
		{"inline bare fence", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseClassification_Clamps(t *testing.T) {
	c, err := parseClassification(`{"document_type":"FACTURA","confidence":1.7}`)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeInvoice, c.DocumentType)
	assert.Equal(t, 1.0, c.Confidence)

	c, err = parseClassification(`{"document_type":"informacion","confidence":"0.25"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.25, c.Confidence)

	c, err = parseClassification(`{"confidence":-3}`)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeInfo, c.DocumentType)
	assert.Equal(t, 0.0, c.Confidence)
}

func TestParseInvoice_Defaults(t *testing.T) {
	inv, err := parseInvoice(`{"currency":"  USD ","products":null}`)
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency)
	assert.NotNil(t, inv.Products)
	assert.Empty(t, inv.Products)
	assert.Nil(t, inv.InvoiceTotal)

	inv, err = parseInvoice(`{"currency":"","invoice_total":"N/A"}`)
	require.NoError(t, err)
	assert.Equal(t, "MXN", inv.Currency)
	assert.Nil(t, inv.InvoiceTotal)

	_, err = parseInvoice(`{"products":{"name":"x"}}`)
	assert.Error(t, err)
}

func TestParseInfo_SentimentHandling(t *testing.T) {
	info, err := parseInfo(`{"sentiment":"muy feliz","sentiment_score":-4,"key_topics":null}`)
	require.NoError(t, err)
	assert.Nil(t, info.Sentiment)
	require.NotNil(t, info.SentimentScore)
	assert.Equal(t, -1.0, *info.SentimentScore)
	assert.Equal(t, []string{}, info.KeyTopics)

	info, err = parseInfo(`{"sentiment":" Neutral ","sentiment_score":"abc","key_topics":["", "a", null, {"x":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNeutral, *info.Sentiment)
	assert.Nil(t, info.SentimentScore)
	assert.Equal(t, []string{"a"}, info.KeyTopics)
}

func TestOptFloat_RejectsNonFinite(t *testing.T) {
	assert.Nil(t, optFloat([]byte(`"NaN"`)))
	assert.Nil(t, optFloat([]byte(`"Inf"`)))
	assert.Nil(t, optFloat([]byte(`true`)))
	f := optFloat([]byte(`" 12.5 "`))
	require.NotNil(t, f)
	assert.Equal(t, 12.5, *f)
}
