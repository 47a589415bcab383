package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/models"
)

func newTestClient(t *testing.T, endpoint string, retries int) *Client {
	t.Helper()
	cfg := config.New()
	cfg.Upload.Endpoint = endpoint
	cfg.Upload.Retries = retries
	cfg.Session.CookieName = "session"
	cfg.Session.CookieValue = "s3cr3t"

	c, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 5 * time.Millisecond
	return c
}

func testPayload() *models.Payload {
	return &models.Payload{
		ContentType: "multipart/form-data; boundary=xyz",
		Body:        []byte("--xyz\r\nbody\r\n--xyz--\r\n"),
		Files:       []models.PayloadFile{{Slot: 1, Name: "a.pdf", Size: 4}},
	}
}

func TestSubmit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "multipart/form-data; boundary=xyz" {
			t.Errorf("unexpected content type %q", ct)
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "s3cr3t" {
			t.Errorf("session cookie missing: %v", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>Result</title></html>"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/compare", 0)
	resp, err := c.Submit(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(resp.Body, []byte("<title>Result</title>")) {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", resp.ContentType)
	}
}

func TestSubmit_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad files", http.StatusBadRequest)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 3)
	_, err := c.Submit(context.Background(), testPayload())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != 400 || statusErr.Body != "bad files" {
		t.Errorf("unexpected status error %+v", statusErr)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSubmit_ServerErrorRetriedWithSameBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "--xyz\r\nbody\r\n--xyz--\r\n" {
			t.Errorf("attempt %d got body %q", calls.Load()+1, body)
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 2)
	resp, err := c.Submit(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if string(resp.Body) != "ok" || calls.Load() != 3 {
		t.Errorf("body=%q calls=%d", resp.Body, calls.Load())
	}
}

func TestSubmit_RetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 1)
	_, err := c.Submit(context.Background(), testPayload())
	if ClassifyError(err) != ErrorTypeServer {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestSubmit_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url, 0)
	_, err := c.Submit(context.Background(), testPayload())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if ClassifyError(err) != ErrorTypeNetwork {
		t.Errorf("expected network error, got %s: %v", ErrorTypeName(ClassifyError(err)), err)
	}
}

func TestCreateUploadClient_CookieScopedToOrigin(t *testing.T) {
	cfg := config.New()
	cfg.Upload.Endpoint = "https://compare.example.com/upload"
	cfg.Session.CookieName = "session"
	cfg.Session.CookieValue = "v"

	client, err := CreateUploadClient(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	same, _ := http.NewRequest("GET", "https://compare.example.com/other", nil)
	if cookies := client.Jar.Cookies(same.URL); len(cookies) != 1 {
		t.Errorf("expected cookie for endpoint origin, got %v", cookies)
	}
	other, _ := http.NewRequest("GET", "https://evil.example.com/", nil)
	if cookies := client.Jar.Cookies(other.URL); len(cookies) != 0 {
		t.Errorf("cookie leaked to another host: %v", cookies)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	code, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", code)
	}
}
