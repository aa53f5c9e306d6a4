// Package metadata scrapes display metadata for url-kind entries. Fetches
// are best effort: any failure yields empty metadata, never an error the
// publish path would surface.
package metadata

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	fetchTimeout = 3 * time.Second
	maxBodyBytes = 512 * 1024
)

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Title fetches the page at rawURL and returns its <title> text, or "" when
// the page is unreachable or has none.
func (f *Fetcher) Title(ctx context.Context, rawURL string) string {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return ""
	}

	return extractTitle(io.LimitReader(resp.Body, maxBodyBytes))
}

func extractTitle(r io.Reader) string {
	tokenizer := html.NewTokenizer(r)
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				if title := strings.TrimSpace(string(tokenizer.Text())); title != "" {
					return title
				}
			}
		}
	}
}
