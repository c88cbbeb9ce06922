package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/masshrc/chatbot/internal/alerts"
	"github.com/masshrc/chatbot/internal/dialogue"
	"github.com/masshrc/chatbot/internal/middleware"
	"github.com/masshrc/chatbot/internal/store"
)

type stubLocator struct{}

func (stubLocator) Locate(category, zipcode string) string {
	return "no resources loaded"
}

type nopTransport struct{}

func (nopTransport) Send(ctx context.Context, to, body string) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "chatbot.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	engine := dialogue.NewEngine(st, stubLocator{}, "test-salt", 30*time.Minute, "")
	broadcaster := alerts.NewBroadcaster(st, nopTransport{})
	h := NewHandler(engine, broadcaster, st)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.BasicAuth("admin", "secret"))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSMSWebhook(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("From", "+15551234567")
	form.Set("Body", "hello")
	resp, err := http.PostForm(srv.URL+"/sms", form)
	if err != nil {
		t.Fatalf("Failed to post webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/xml" {
		t.Errorf("Expected text/xml, got %q", ct)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "<Response>") || !strings.Contains(body, "opt-in") {
		t.Errorf("Expected greeting TwiML, got %q", body)
	}
}

func TestSMSWebhookMissingSender(t *testing.T) {
	srv := newTestServer(t)

	// A payload without From still gets a 200 and an apology verb.
	resp, err := http.PostForm(srv.URL+"/sms", url.Values{"Body": {"hi"}})
	if err != nil {
		t.Fatalf("Failed to post webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "An error occurred") {
		t.Errorf("Expected apology TwiML, got %q", body)
	}
}

func TestBroadcastRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/admin/alerts", "application/json",
		strings.NewReader(`{"message":"test"}`))
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestBroadcastAlert(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/admin/alerts",
		strings.NewReader(`{"message":"Bad batch warning"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `"delivered":0`) {
		t.Errorf("Expected zero deliveries with no subscribers, got %q", body)
	}
}

func TestBroadcastAlertEmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/admin/alerts",
		strings.NewReader(`{"message":"  "}`))
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Failed to get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(b)
}
