package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Fetcher defines the read side of the WAHA API used by the background
// scheduler. It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchChats(ctx context.Context, session string) ([]ChatSummary, error)
	FetchMessages(ctx context.Context, session, chatID string) ([]Message, error)
	FetchProfile(ctx context.Context, session string) (Profile, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// ErrInvalidPhone is returned by RequestPairingCode before any request is made
// when the phone number has fewer than ten digits.
var ErrInvalidPhone = errors.New("invalid phone number: use international format without + (e.g. 12132132130)")

// FetchError wraps every failure talking to the WAHA server.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client talks to the WAHA HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userAgent string
	logger    *slog.Logger
}

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultUserAgent = "parley/0.1"
	requestTimeout   = 10 * time.Second

	chatsLimit     = 1000
	messagesLimit  = 50
	minPhoneDigits = 10
)

// NewClient builds a Client for the WAHA server at baseURL.
func NewClient(baseURL, apiKey string, logger *slog.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		apiKey:    apiKey,
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// Ping checks that the server is reachable and the API key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "ping", http.MethodGet, &url.URL{Path: "/api/server/version"}, nil, nil)
}

// FetchSessions lists every session, including stopped ones.
func (c *Client) FetchSessions(ctx context.Context) ([]SessionSummary, error) {
	rel := &url.URL{Path: "/api/sessions", RawQuery: url.Values{"all": {"true"}}.Encode()}
	var payload []SessionSummary
	if err := c.doJSON(ctx, "fetch sessions", http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return keepValid(c.logger, "session", payload, SessionSummary.Validate), nil
}

// FetchChats retrieves the chat overview for a session.
func (c *Client) FetchChats(ctx context.Context, session string) ([]ChatSummary, error) {
	values := url.Values{}
	values.Set("limit", fmt.Sprint(chatsLimit))
	rel := &url.URL{Path: sessionPath(session, "chats", "overview"), RawQuery: values.Encode()}
	var payload []ChatSummary
	if err := c.doJSON(ctx, "fetch chats", http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return keepValid(c.logger, "chat", payload, ChatSummary.Validate), nil
}

// FetchMessages retrieves the latest messages of a chat in arrival order.
func (c *Client) FetchMessages(ctx context.Context, session, chatID string) ([]Message, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, &FetchError{Op: "fetch messages", Err: errors.New("chat id required")}
	}
	values := url.Values{}
	values.Set("limit", fmt.Sprint(messagesLimit))
	values.Set("downloadMedia", "false")
	rel := &url.URL{Path: sessionPath(session, "chats", chatID, "messages"), RawQuery: values.Encode()}
	var payload []Message
	if err := c.doJSON(ctx, "fetch messages", http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	messages := keepValid(c.logger, "message", payload, Message.Validate)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

// FetchProfile retrieves the profile of the logged in account.
func (c *Client) FetchProfile(ctx context.Context, session string) (Profile, error) {
	var payload Profile
	rel := &url.URL{Path: sessionPath(session, "profile")}
	if err := c.doJSON(ctx, "fetch profile", http.MethodGet, rel, nil, &payload); err != nil {
		return Profile{}, err
	}
	if err := payload.Validate(); err != nil {
		return Profile{}, &FetchError{Op: "fetch profile", Err: err}
	}
	return payload, nil
}

// FetchQR returns the raw pairing value behind the session's QR code.
func (c *Client) FetchQR(ctx context.Context, session string) (string, error) {
	rel := &url.URL{Path: sessionPath(session, "auth", "qr"), RawQuery: url.Values{"format": {"raw"}}.Encode()}
	var payload qrResponse
	if err := c.doJSON(ctx, "fetch qr", http.MethodGet, rel, nil, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Value) == "" {
		return "", &FetchError{Op: "fetch qr", Err: errors.New("no qr value in response")}
	}
	return payload.Value, nil
}

// CreateSession creates and starts a session with the local store enabled.
func (c *Client) CreateSession(ctx context.Context, name string) (SessionSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	body := createSessionRequest{
		Name:  name,
		Start: true,
		Config: sessionConfig{Noweb: nowebConfig{
			Store:      nowebStore{Enabled: true},
			MarkOnline: true,
		}},
	}
	var payload SessionSummary
	if err := c.doJSON(ctx, "create session", http.MethodPost, &url.URL{Path: "/api/sessions"}, body, &payload); err != nil {
		return SessionSummary{}, err
	}
	return payload, nil
}

// RequestPairingCode asks WAHA for a phone pairing code, the alternative to
// scanning the QR code.
func (c *Client) RequestPairingCode(ctx context.Context, session, phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < minPhoneDigits {
		return "", ErrInvalidPhone
	}
	var payload pairingResponse
	rel := &url.URL{Path: sessionPath(session, "auth", "request-code")}
	if err := c.doJSON(ctx, "request pairing code", http.MethodPost, rel, pairingRequest{PhoneNumber: digits}, &payload); err != nil {
		return "", err
	}
	if payload.Code == "" {
		return "", &FetchError{Op: "request pairing code", Err: errors.New("no pairing code returned from server")}
	}
	return payload.Code, nil
}

func (c *Client) doJSON(ctx context.Context, op, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return &FetchError{Op: op, Err: errors.New("client is nil")}
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: errors.New(errorDetail(resp.Body))}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorDetail extracts the message of a WAHA error body, which is either
// plain text or {"message": ..., "error": ...}.
func errorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	text := strings.TrimSpace(string(raw))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		}
	}
	if text == "" {
		return "request failed"
	}
	return text
}

func keepValid[T any](logger *slog.Logger, kind string, items []T, validate func(T) error) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if err := validate(item); err != nil {
			continue
		}
		out = append(out, item)
	}
	if dropped := len(items) - len(out); dropped > 0 {
		logger.Debug("dropped invalid records", "kind", kind, "count", dropped)
	}
	return out
}

func sessionPath(session string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, "/api", session)
	segments = append(segments, parts...)
	return strings.Join(segments, "/")
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse waha url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
