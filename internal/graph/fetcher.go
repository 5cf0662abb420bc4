package graph

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/andresuchdata/invclose/backend-go/internal/source"
)

// storeName labels OneDrive failures.
const storeName = "onedrive"

// Fetcher downloads OneDrive items on behalf of the user owning token.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher builds a Fetcher that authorizes every request with the bearer
// token handed over by the browser. baseURL is the drive root, for example
// https://graph.microsoft.com/v1.0/me/drive.
func NewFetcher(ctx context.Context, baseURL, token string) *Fetcher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  oauth2.NewClient(ctx, ts),
	}
}

// Fetch downloads the content of item id. Any transport error or non-2xx
// status is an ErrUpstreamFetch.
func (f *Fetcher) Fetch(ctx context.Context, id string) (source.File, error) {
	endpoint := fmt.Sprintf("%s/items/%s/content", f.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.File{}, fmt.Errorf("failed to build request for %s: %w", id, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return source.File{}, source.UpstreamError(storeName, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return source.File{}, source.UpstreamError(storeName, id,
			fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return source.File{}, source.UpstreamError(storeName, id, err)
	}

	return source.File{Name: filename(resp.Header.Get("Content-Disposition")), Data: data}, nil
}

// filename extracts the attachment name from a Content-Disposition header.
func filename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

var _ source.Fetcher = (*Fetcher)(nil)
