package congress_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/billsync/ingestcore/internal/congress"
)

func newTestClient(t *testing.T, baseURL string, opts ...congress.Option) *congress.Client {
	t.Helper()
	allOpts := append([]congress.Option{
		congress.WithBaseURL(baseURL),
		congress.WithInterRequestDelay(0),
		congress.WithInitialBackoff(time.Millisecond),
	}, opts...)
	client, err := congress.New("test-key", allOpts...)
	if err != nil {
		t.Fatalf("congress.New failed: %v", err)
	}
	return client
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"bill":{"title":"Test Bill"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	outcome, err := client.Fetch(context.Background(), srv.URL+"/bill/119/hr/1", "bill-detail")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", outcome.StatusCode)
	}
	if outcome.NotFound {
		t.Error("NotFound should be false on a 200")
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	outcome, err := client.Fetch(context.Background(), srv.URL+"/bill/119/hr/1/actions", "bill-actions")
	if err != nil {
		t.Fatalf("Fetch returned error on 404: %v", err)
	}
	if !outcome.NotFound {
		t.Error("expected NotFound=true on a 404")
	}
}

// TestFetch_RetriesOn429ThenSucceeds verifies the retry/backoff loop
// recovers once the upstream stops rate-limiting.
func TestFetch_RetriesOn429ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"bills":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, congress.WithMaxRetries(5))
	outcome, err := client.Fetch(context.Background(), srv.URL+"/bill/119/hr", "bill-list")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 after retries", outcome.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("call count = %d, want 3 (2 failures + 1 success)", got)
	}
}

// TestFetch_ExhaustsRetriesOnPersistent429 verifies ErrExhausted surfaces
// once maxRetries is spent, rather than retrying forever.
func TestFetch_ExhaustsRetriesOnPersistent429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, congress.WithMaxRetries(2))
	_, err := client.Fetch(context.Background(), srv.URL+"/bill/119/hr", "bill-list")
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
}

// TestFetch_NonRetryableStatusReturnsImmediately verifies a 500 is
// surfaced as a non-retryable outcome rather than burning the retry
// budget on a dead endpoint.
func TestFetch_NonRetryableStatusReturnsImmediately(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, congress.WithMaxRetries(5))
	outcome, err := client.Fetch(context.Background(), srv.URL+"/bill/119/hr", "bill-list")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if outcome.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", outcome.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("call count = %d, want 1 (no retry on non-retryable status)", got)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := congress.New(""); err != congress.ErrNoAPIKey {
		t.Errorf("New(\"\") error = %v, want %v", err, congress.ErrNoAPIKey)
	}
}

func TestGetBillDetail_NotFoundReturnsErrNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetBillDetail(context.Background(), 119, "hr", 1)
	if err != congress.ErrNotFound {
		t.Errorf("GetBillDetail error = %v, want %v", err, congress.ErrNotFound)
	}
}

func TestGetBillActions_NotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	actions, ok, err := client.GetBillActions(context.Background(), 119, "hr", 1)
	if err != nil {
		t.Fatalf("GetBillActions returned error on 404: %v", err)
	}
	if ok {
		t.Error("ok should be false on a 404 (absent resource, not a failure)")
	}
	if actions != nil {
		t.Errorf("actions should be nil on a 404, got %v", actions)
	}
}

func TestGetBillActions_EmptySuccessSetsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"actions":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	actions, ok, err := client.GetBillActions(context.Background(), 119, "hr", 1)
	if err != nil {
		t.Fatalf("GetBillActions returned error: %v", err)
	}
	if !ok {
		t.Error("ok should be true on a 200, even with an empty actions array")
	}
	if len(actions) != 0 {
		t.Errorf("expected zero actions, got %d", len(actions))
	}
}

func TestFindTextURLs(t *testing.T) {
	version := congress.TextVersion{
		Formats: []congress.TextFormat{
			{Type: "PDF", URL: "https://example.com/bill.pdf"},
			{Type: "Formatted Text", URL: "https://example.com/bill.htm"},
		},
	}
	textURL, pdfURL := congress.FindTextURLs(version)
	if textURL != "https://example.com/bill.htm" {
		t.Errorf("textURL = %q, want the Formatted Text URL", textURL)
	}
	if pdfURL != "https://example.com/bill.pdf" {
		t.Errorf("pdfURL = %q, want the PDF URL", pdfURL)
	}
}

func TestFormatFromDateTime(t *testing.T) {
	ts := time.Date(2025, 1, 17, 3, 14, 0, 0, time.UTC)
	got := congress.FormatFromDateTime(ts)
	want := "2025-01-17T03:14:00Z"
	if got != want {
		t.Errorf("FormatFromDateTime() = %q, want %q", got, want)
	}
}
