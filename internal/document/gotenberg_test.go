package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotenbergClientConvertToPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/forms/libreoffice/convert", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "fattura_3_2025.docx", header.Filename)

		_, _ = w.Write([]byte("%PDF-1.7 converted"))
	}))
	defer server.Close()

	client := NewGotenbergClient(server.URL, 5*time.Second)
	pdf, err := client.ConvertToPDF(context.Background(), []byte("docx bytes"), "fattura_3_2025.docx")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 converted", string(pdf))
}

func TestGotenbergClientReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGotenbergClient(server.URL, 5*time.Second)
	_, err := client.ConvertToPDF(context.Background(), []byte("docx bytes"), "fattura.docx")
	assert.ErrorContains(t, err, "status 500")
}
