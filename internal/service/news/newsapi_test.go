package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "IndexPulse/pkg/http"
)

func TestFetch_MockModeIsDeterministic(t *testing.T) {
	c := NewClient(xhttp.NewClient())
	a, err := c.Fetch(context.Background(), "S&P 500 stock market index")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(a) == 0 {
		t.Fatal("mock mode should produce headlines")
	}
	b, _ := c.Fetch(context.Background(), "S&P 500 stock market index")
	for i := range a {
		if a[i].Title != b[i].Title {
			t.Fatalf("mock headlines should be stable per query: %q vs %q", a[i].Title, b[i].Title)
		}
	}
	other, _ := c.Fetch(context.Background(), "NIFTY 50 stock market index")
	if other[0].Title == a[0].Title {
		t.Error("different queries should rotate different headlines")
	}
}

func TestFetch_UpstreamParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			t.Errorf("missing api key header")
		}
		if q := r.URL.Query().Get("q"); q != "S&P 500" {
			t.Errorf("query param: got %q", q)
		}
		w.Write([]byte(`{"status":"ok","articles":[
			{"title":"Markets rally","url":"http://x","source":{"name":"wire"},"publishedAt":"2026-03-02T10:00:00Z"},
			{"title":"","url":"http://y","source":{"name":"wire"},"publishedAt":"2026-03-02T09:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(xhttp.NewClient(), WithBaseURL(srv.URL), WithAPIKey("k"))
	got, err := c.Fetch(context.Background(), "S&P 500")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("untitled articles should be dropped, got %d", len(got))
	}
	if got[0].Title != "Markets rally" || got[0].Source != "wire" {
		t.Errorf("article: %+v", got[0])
	}
}

func TestFetch_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"apiKeyInvalid"}`))
	}))
	defer srv.Close()

	c := NewClient(xhttp.NewClient(), WithBaseURL(srv.URL), WithAPIKey("bad"))
	if _, err := c.Fetch(context.Background(), "q"); err == nil {
		t.Fatal("expected error for upstream error status")
	}
}
