package sos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	return NewClient(cfg)
}

func TestReplySuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Подышите глубоко."}}]}`))
	})

	answer, err := client.Reply(context.Background())
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if answer != "Подышите глубоко." {
		t.Fatalf("answer = %q", answer)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody.Model != defaultModel {
		t.Fatalf("model = %q, want %q", gotBody.Model, defaultModel)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}
}

func TestReplyUpstreamError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := client.Reply(context.Background())
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if gerr.Kind != KindUpstream {
		t.Fatalf("kind = %q, want %q", gerr.Kind, KindUpstream)
	}
	if gerr.HTTPCode != http.StatusTooManyRequests {
		t.Fatalf("http code = %d", gerr.HTTPCode)
	}
}

func TestReplyMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"empty choices":   `{"choices":[]}`,
		"missing content": `{"choices":[{"message":{}}]}`,
		"not json":        `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := client.Reply(context.Background())
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if gerr.Kind != KindMalformed {
				t.Fatalf("kind = %q, want %q", gerr.Kind, KindMalformed)
			}
		})
	}
}

func TestReplyTimeoutIsNetworkError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Reply(ctx)
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if gerr.Kind != KindNetwork {
		t.Fatalf("kind = %q, want %q", gerr.Kind, KindNetwork)
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{APIKey: "k"}
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Model != defaultModel || cfg.BaseURL != defaultBaseURL || cfg.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	if err := Normalize(&Config{}); err == nil {
		t.Fatal("missing api key must fail")
	}
}
