package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURI_RoundTrip(t *testing.T) {
	content := []byte{0xff, 0xd8, 0xff, 0x00, 0x10}
	uri := EncodeDataURI(content, "image/jpeg")
	assert.Equal(t, "data:image/jpeg;base64,/9j/ABA=", uri)

	ct, got, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, content, got)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	for _, uri := range []string{
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,AAAA",
		"data:image/png;base64,***",
	} {
		_, _, err := DecodeDataURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("Factura.PDF"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("foto.jpeg"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("foto.JPG"))
	assert.Equal(t, "image/png", ContentTypeFor("scan.png"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("notes.txt"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("README"))
}
