package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"classifieds-scraper/utils"
)

func TestHTTPFetcherReturnsBody(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "test-agent")
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc != "<html><body>ok</body></html>" {
		t.Errorf("body: got %q", doc)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent: got %q, want test-agent", gotUA)
	}
}

func TestHTTPFetcherNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(5*time.Second, "").Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrStatus) {
		t.Errorf("err: got %v, want ErrStatus", err)
	}
}

type flakyFetcher struct {
	failures int32
	calls    int32
}

func (f *flakyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return "", errors.New("connection reset")
	}
	return "doc:" + url, nil
}

func TestRetryFetcherRecovers(t *testing.T) {
	inner := &flakyFetcher{failures: 2}
	f := NewRetryFetcher(inner, 3, time.Millisecond, utils.NewLoggerWithOutput(io.Discard))

	doc, err := f.Fetch(context.Background(), "u")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc != "doc:u" {
		t.Errorf("doc: got %q", doc)
	}
	if inner.calls != 3 {
		t.Errorf("calls: got %d, want 3", inner.calls)
	}
}

func TestRetryFetcherSingleAttempt(t *testing.T) {
	inner := &flakyFetcher{failures: 1}
	f := NewRetryFetcher(inner, 1, time.Millisecond, utils.NewLoggerWithOutput(io.Discard))

	if _, err := f.Fetch(context.Background(), "u"); err == nil {
		t.Fatal("expected error with a single attempt")
	}
	if inner.calls != 1 {
		t.Errorf("calls: got %d, want 1", inner.calls)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status  int64
		wantErr bool
	}{
		{200, false},
		{204, false},
		{299, false},
		{199, true},
		{301, true},
		{404, true},
		{500, true},
	}
	for _, tt := range tests {
		err := checkStatus("chrome", "http://example.test/", tt.status)
		if (err != nil) != tt.wantErr {
			t.Errorf("status %d: got err %v, wantErr %v", tt.status, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrStatus) {
			t.Errorf("status %d: error %v does not wrap ErrStatus", tt.status, err)
		}
	}
}
