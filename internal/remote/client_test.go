package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/potluck/internal/guest"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultStoreURL {
		t.Fatalf("host = %q, want %q", u.Host, defaultStoreURL)
	}

	u, err = parseBaseURL("https://example.supabase.co/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_SpeaksTableEndpoints(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		query  string
		body   string
		apiKey string
	}
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
			apiKey: r.Header.Get("apikey"),
		})
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]guest.Guest{{ID: "42", Name: "Dara", Dish: "Mochi", RSVP: guest.RSVPYes}})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithAPIKey(" secret "), WithTable("party"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	records, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "42" || records[0].Name != "Dara" {
		t.Fatalf("FetchAll = %#v, want Dara id=42", records)
	}

	if err := c.Insert(ctx, guest.Draft{Name: "Kiri", Dish: "Salad", RSVP: guest.RSVPMaybe}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := c.Update(ctx, "42", guest.Patch{}.WithRSVP(guest.RSVPNo)); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := c.Delete(ctx, "42"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if len(calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(calls))
	}
	for _, c := range calls {
		if c.path != "/rest/v1/party" {
			t.Fatalf("%s path = %q, want /rest/v1/party", c.method, c.path)
		}
		if c.apiKey != "secret" {
			t.Fatalf("%s apikey = %q, want secret", c.method, c.apiKey)
		}
	}
	if calls[0].query != "order=created_at.asc&select=%2A" {
		t.Fatalf("GET query = %q", calls[0].query)
	}
	if calls[1].method != http.MethodPost || calls[1].body != `{"name":"Kiri","dish":"Salad","categories":[],"rsvp":"maybe","notes":null}` {
		t.Fatalf("POST body = %s", calls[1].body)
	}
	if calls[2].method != http.MethodPatch || calls[2].query != "id=eq.42" || calls[2].body != `{"rsvp":"no"}` {
		t.Fatalf("PATCH = %+v", calls[2])
	}
	if calls[3].method != http.MethodDelete || calls[3].query != "id=eq.42" {
		t.Fatalf("DELETE = %+v", calls[3])
	}
}

func TestClient_RequiresID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Update(context.Background(), "", guest.Patch{}); err == nil {
		t.Fatalf("Update returned nil error, want error")
	}
	if err := c.Delete(context.Background(), ""); err == nil {
		t.Fatalf("Delete returned nil error, want error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchAll error = %v, want decode response error", err)
	}

	err = c.Delete(context.Background(), "1")
	if !errors.Is(err, ErrStatus) || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("Delete error = %v, want status 500 error", err)
	}
}
