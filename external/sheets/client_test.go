package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchRange_ReturnsStringRows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Goog-Api-Key"); got != "secret" {
			t.Errorf("api key header mismatch: %q", got)
		}
		if got := r.URL.EscapedPath(); got != "/v4/spreadsheets/sheet-1/values/QB%20Lines%21A1:C3" {
			t.Errorf("path mismatch: %q", got)
		}
		_, _ = w.Write([]byte(`{"range":"'QB Lines'!A1:C3","majorDimension":"ROWS","values":[["Player","Line"],["Allen",245.5,true],[]]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret", DefaultSpreadsheetID: "sheet-1"})
	rows, err := client.FetchRange(context.Background(), "", "QB Lines!A1:C3")
	if err != nil {
		t.Fatalf("fetch range: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count mismatch: got=%d want=3", len(rows))
	}
	if rows[1][0] != "Allen" || rows[1][1] != "245.5" || rows[1][2] != "true" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
	if len(rows[2]) != 0 {
		t.Fatalf("empty row should stay empty: %v", rows[2])
	}
}

func TestFetchRange_EmptyValues(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"range":"A1:B2","majorDimension":"ROWS"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	rows, err := client.FetchRange(context.Background(), "explicit", "A1:B2")
	if err != nil {
		t.Fatalf("fetch range: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %v", rows)
	}
}

func TestFetchRange_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, DefaultSpreadsheetID: "sheet-1"})
	_, err := client.FetchRange(context.Background(), "", "A1:B2")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "status=403") || !strings.Contains(err.Error(), "PERMISSION_DENIED") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchRange_RequiresSpreadsheet(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	_, err := client.FetchRange(context.Background(), " ", "A1:B2")
	if !errors.Is(err, ErrSpreadsheetNotConfigured) {
		t.Fatalf("expected ErrSpreadsheetNotConfigured, got %v", err)
	}
}
