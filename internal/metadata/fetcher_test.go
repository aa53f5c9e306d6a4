package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>  Hello World  </title></head><body><p>x</p></body></html>")
	}))
	defer srv.Close()

	f := NewFetcher()
	assert.Equal(t, "Hello World", f.Title(context.Background(), srv.URL))
}

func TestTitleMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>no title here</body></html>")
	}))
	defer srv.Close()

	f := NewFetcher()
	assert.Equal(t, "", f.Title(context.Background(), srv.URL))
}

func TestTitleNonHTMLContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title": "not a page"}`)
	}))
	defer srv.Close()

	f := NewFetcher()
	assert.Equal(t, "", f.Title(context.Background(), srv.URL))
}

func TestTitleErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	assert.Equal(t, "", f.Title(context.Background(), srv.URL))
}

func TestTitleUnreachableHost(t *testing.T) {
	f := NewFetcher()
	assert.Equal(t, "", f.Title(context.Background(), "http://127.0.0.1:1"))
}

func TestExtractTitleTruncatedInput(t *testing.T) {
	assert.Equal(t, "Partial", extractTitle(strings.NewReader("<html><head><title>Partial")))
}
