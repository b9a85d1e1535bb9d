package aggregator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
	"github.com/tiktoken-go/tokenizer"

	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/logger"
)

// Client sends the running conversation to the aggregation service.
type Client interface {
	Aggregate(ctx context.Context, turns []conversation.Turn) (*Payload, error)
}

// TransportError means the request could not be completed or the service
// answered with a non-success status.
type TransportError struct {
	StatusCode int    // 0 when no response was received
	Status     string // e.g. "500 Internal Server Error"
	Err        error
}

func (e *TransportError) Error() string {
	if e.Status != "" {
		return e.Status
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures an HTTPClient.
type Options struct {
	URL     string
	APIKey  string
	Timeout time.Duration // zero means no client-side timeout
}

// HTTPClient implements Client over a single JSON POST.
type HTTPClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service at opts.URL.
func NewHTTPClient(opts Options) *HTTPClient {
	return &HTTPClient{
		url:        strings.TrimSpace(opts.URL),
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// EncodeRequest builds the request body {"conversation":[{role,content}...]}.
func EncodeRequest(turns []conversation.Turn) ([]byte, error) {
	body := []byte(`{"conversation":[]}`)
	for i, t := range turns {
		var err error
		body, err = sjson.SetBytes(body, fmt.Sprintf("conversation.%d.role", i), string(t.Role))
		if err != nil {
			return nil, err
		}
		body, err = sjson.SetBytes(body, fmt.Sprintf("conversation.%d.content", i), t.Content)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// Aggregate posts the conversation and decodes the service's answer.
func (c *HTTPClient) Aggregate(ctx context.Context, turns []conversation.Turn) (*Payload, error) {
	start := time.Now()
	requestID := uuid.NewString()

	body, err := EncodeRequest(turns)
	if err != nil {
		logger.Error("aggregator request marshal error", "requestID", requestID, "err", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	logger.Info(
		"aggregator request",
		"requestID", requestID,
		"turns", len(turns),
		"inputChars", inputChars(turns),
		"estTokens", estimateTokens(turns),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		logger.Error("aggregator request create error", "requestID", requestID, "err", err)
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("aggregator request send error", "requestID", requestID, "err", err)
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		logger.Error("aggregator response read error", "requestID", requestID, "err", err)
		return nil, &TransportError{StatusCode: httpResp.StatusCode, Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		logger.Warn(
			"aggregator non-success status",
			"requestID", requestID,
			"status", httpResp.Status,
			"latencyMs", time.Since(start).Milliseconds(),
		)
		return nil, &TransportError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Err:        fmt.Errorf("unexpected status %d", httpResp.StatusCode),
		}
	}

	payload, err := ParsePayload(respBody)
	if err != nil {
		logger.Error("aggregator response parse error", "requestID", requestID, "err", err)
		return nil, &TransportError{StatusCode: httpResp.StatusCode, Err: err}
	}

	logger.Info(
		"aggregator response",
		"requestID", requestID,
		"status", httpResp.Status,
		"usedModels", len(payload.UsedModels),
		"hasAggregated", payload.AggregatedAnswer != nil,
		"outputChars", len(respBody),
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return payload, nil
}

func inputChars(turns []conversation.Turn) int {
	total := 0
	for _, t := range turns {
		total += len(t.Role) + len(t.Content)
	}
	return total
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// estimateTokens returns an approximate cl100k token count, or 0 if the
// encoding is unavailable. Only used for logging.
func estimateTokens(turns []conversation.Turn) int {
	codecOnce.Do(func() {
		enc, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			logger.Debug("tokenizer unavailable", "err", err)
			return
		}
		codec = enc
	})
	if codec == nil {
		return 0
	}
	total := 0
	for _, t := range turns {
		ids, _, err := codec.Encode(t.Content)
		if err != nil {
			continue
		}
		total += len(ids)
	}
	return total
}
