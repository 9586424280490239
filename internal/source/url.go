package source

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/courseforge/course-engine/internal/domain"
)

const (
	fetchTimeout  = 2 * time.Minute
	maxFetchBytes = 64 << 20
)

// FromURL fetches a remote document into a temporary directory and extracts
// it. The payload kind is decided by the response content type, falling back
// to the URL path extension.
func FromURL(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, domain.ExtractionError("invalid document URL", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.ExtractionError("failed to build fetch request", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, domain.ExtractionError("failed to fetch document URL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ExtractionError("document URL returned status "+resp.Status, nil)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, domain.ExtractionError("failed to read document body", err)
	}

	filename := path.Base(parsed.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "document"
	}
	if isPDF(resp.Header.Get("Content-Type")) && !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}

	return FromUpload(filename, payload)
}

func isPDF(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf")
}
