package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Converter turns a DOCX into a PDF.
type Converter interface {
	ConvertToPDF(ctx context.Context, docx []byte, filename string) ([]byte, error)
}

// GotenbergClient converts documents through a Gotenberg instance's
// LibreOffice route. Conversion is a synchronous call with a bounded
// timeout; failures are reported to the caller and never retried here.
type GotenbergClient struct {
	baseURL string
	client  *http.Client
}

func NewGotenbergClient(baseURL string, timeout time.Duration) *GotenbergClient {
	return &GotenbergClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GotenbergClient) ConvertToPDF(ctx context.Context, docx []byte, filename string) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}
	if _, err := part.Write(docx); err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/forms/libreoffice/convert", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("conversion service returned status %d", resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted document: %w", err)
	}
	return pdf, nil
}
