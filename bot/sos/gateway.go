package sos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/nosmoke/coachbot/core/logger"
)

// Canned request content: the gateway always asks the same question with
// the same persona, independent of what the user typed.
const (
	personaPrompt = "Ты доброжелательный психолог, помогающий бросить курить."
	cravingPrompt = "Мне хочется курить, что делать?"
)

// Kind classifies a gateway failure for logging.
type Kind string

const (
	// KindNetwork covers transport faults and timeouts.
	KindNetwork Kind = "network"
	// KindUpstream covers non-2xx responses from the completions API.
	KindUpstream Kind = "upstream"
	// KindMalformed covers 2xx responses missing the expected fields.
	KindMalformed Kind = "malformed"
)

// Error is a normalized gateway failure. Callers show the user a generic
// apology; Kind and Detail are for logs only.
type Error struct {
	Kind     Kind
	HTTPCode int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sos %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("sos %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Code is picked up by handler summary logging.
func (e *Error) Code() string { return strings.ToUpper(string(e.Kind)) }

// Client issues a single completion request per trigger. No retries, no
// caching, no deduplication; each press is an independent call.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a gateway client. Config must be normalized.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

// Reply issues one completion request and returns the answer text.
// The overall client timeout bounds the call; ctx may cancel it earlier.
func (c *Client) Reply(ctx context.Context) (string, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: personaPrompt},
			{Role: "user", Content: cravingPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sos: encode request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sos: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		gerr := &Error{Kind: KindNetwork, Err: err}
		c.logFailure(ctx, gerr, start)
		return "", gerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		gerr := &Error{Kind: KindNetwork, Err: err}
		c.logFailure(ctx, gerr, start)
		return "", gerr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &Error{
			Kind:     KindUpstream,
			HTTPCode: resp.StatusCode,
			Detail:   upstreamDetail(raw, resp.Status),
		}
		c.logFailure(ctx, gerr, start)
		return "", gerr
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		gerr := &Error{Kind: KindMalformed, HTTPCode: resp.StatusCode, Err: err}
		c.logFailure(ctx, gerr, start)
		return "", gerr
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		gerr := &Error{
			Kind:     KindMalformed,
			HTTPCode: resp.StatusCode,
			Detail:   "response has no choices content",
		}
		c.logFailure(ctx, gerr, start)
		return "", gerr
	}

	answer := parsed.Choices[0].Message.Content
	logger.LogEvent(ctx, logger.SOS, slog.LevelDebug, "sos.request.ok",
		slog.String("model", c.cfg.Model),
		slog.Int("http_code", resp.StatusCode),
		slog.Int64("elapsed_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return answer, nil
}

func (c *Client) logFailure(ctx context.Context, gerr *Error, start time.Time) {
	attrs := []slog.Attr{
		slog.String("model", c.cfg.Model),
		slog.String("err_code", gerr.Code()),
		slog.String("err", logger.SanitizeLimit(gerr.Error(), 256)),
		slog.Int64("elapsed_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if gerr.HTTPCode != 0 {
		attrs = append(attrs, slog.Int("http_code", gerr.HTTPCode))
	}
	logger.LogEvent(ctx, logger.SOS, slog.LevelError, "sos.request.fail", attrs...)
}

// upstreamDetail pulls the error field out of a failure body when present.
func upstreamDetail(raw []byte, status string) string {
	var partial struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &partial); err == nil && len(partial.Error) > 0 {
		return string(partial.Error)
	}
	return status
}
