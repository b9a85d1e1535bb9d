package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linanwx/aggrechat/conversation"
)

func TestEncodeRequest(t *testing.T) {
	turns := []conversation.Turn{
		conversation.AuthorTurn("Hi \"there\"\n"),
		conversation.RespondentTurn("Hello"),
	}
	body, err := EncodeRequest(turns)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}

	var decoded struct {
		Conversation []conversation.Turn `json:"conversation"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	if len(decoded.Conversation) != 2 {
		t.Fatalf("conversation len = %d, want 2", len(decoded.Conversation))
	}
	if decoded.Conversation[0] != turns[0] || decoded.Conversation[1] != turns[1] {
		t.Fatalf("conversation = %+v", decoded.Conversation)
	}

	empty, err := EncodeRequest(nil)
	if err != nil {
		t.Fatalf("EncodeRequest(nil) error = %v", err)
	}
	if string(empty) != `{"conversation":[]}` {
		t.Fatalf("EncodeRequest(nil) = %s", empty)
	}
}

func TestHTTPClientAggregateSuccess(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aggregated_answer":"Hello","usedModels":["gpt"],"domain":"chat"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Options{URL: srv.URL, APIKey: "secret"})
	p, err := c.Aggregate(context.Background(), []conversation.Turn{conversation.AuthorTurn("Hi")})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if p.AggregatedAnswer == nil || *p.AggregatedAnswer != "Hello" {
		t.Fatalf("AggregatedAnswer = %v", p.AggregatedAnswer)
	}
	if p.Domain == nil || *p.Domain != "chat" {
		t.Fatalf("Domain = %v", p.Domain)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("X-Request-ID should be set")
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if string(gotBody) != `{"conversation":[{"role":"user","content":"Hi"}]}` {
		t.Fatalf("request body = %s", gotBody)
	}
}

func TestHTTPClientAggregateNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(Options{URL: srv.URL})
	_, err := c.Aggregate(context.Background(), nil)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Aggregate() error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d", te.StatusCode)
	}
	if te.Error() != "500 Internal Server Error" {
		t.Fatalf("Error() = %q", te.Error())
	}
}

func TestHTTPClientAggregateInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(Options{URL: srv.URL}).Aggregate(context.Background(), nil)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("Aggregate() error = %v, want ErrInvalidPayload", err)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatal("invalid body should surface as a transport error")
	}
}

func TestHTTPClientAggregateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(Options{URL: url}).Aggregate(context.Background(), nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Aggregate() error = %v, want *TransportError", err)
	}
	if te.StatusCode != 0 || te.Error() == "" {
		t.Fatalf("TransportError = %+v", te)
	}
}

func TestParsePayloadRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `[]`, `"x"`, `{`} {
		if _, err := ParsePayload([]byte(raw)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("ParsePayload(%q) error = %v, want ErrInvalidPayload", raw, err)
		}
	}
}

func TestParsePayloadIgnoresNonStringModels(t *testing.T) {
	p, err := ParsePayload([]byte(`{"usedModels":["a",1,"b"],"modelStrengths":"oops"}`))
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	if len(p.UsedModels) != 2 || p.UsedModels[0] != "a" || p.UsedModels[1] != "b" {
		t.Fatalf("UsedModels = %v", p.UsedModels)
	}
	if p.ModelStrengths != nil {
		t.Fatalf("ModelStrengths = %+v, want nil for non-object", p.ModelStrengths)
	}
}
