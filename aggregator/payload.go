// Package aggregator talks to the remote aggregation service and turns its
// loosely-structured answers into display text plus a diagnostics record.
package aggregator

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidPayload is returned when a response body is not a JSON object.
var ErrInvalidPayload = errors.New("aggregator: response is not a JSON object")

// Response field names used by the aggregation service.
const (
	fieldDomain           = "domain"
	fieldGPTAnswer        = "gpt_answer"
	fieldDeepSeekAnswer   = "deepseek_answer"
	fieldAnthropicAnswer  = "anthropic_answer"
	fieldGrokAnswer       = "grok_answer"
	fieldAggregatedAnswer = "aggregated_answer"
	fieldFinalAnswer      = "final_answer"
	fieldModelStrengths   = "modelStrengths"
	fieldUsedModels       = "usedModels"
)

// Strengths is the per-model strengths mapping in the order the service sent it.
type Strengths struct {
	raw string
}

// Raw returns the JSON object as received.
func (s *Strengths) Raw() string {
	if s == nil {
		return ""
	}
	return s.raw
}

// MarshalJSON keeps the service's key order.
func (s Strengths) MarshalJSON() ([]byte, error) {
	if s.raw == "" {
		return []byte("{}"), nil
	}
	return []byte(s.raw), nil
}

// Payload is a decoded service response. A nil field means the service did
// not send it (or sent it with the wrong JSON type).
type Payload struct {
	Domain           *string
	GPTAnswer        *string
	DeepSeekAnswer   *string
	AnthropicAnswer  *string
	GrokAnswer       *string
	AggregatedAnswer *string
	FinalAnswer      *string
	ModelStrengths   *Strengths
	UsedModels       []string
}

// ParsePayload decodes a response body.
func ParsePayload(body []byte) (*Payload, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrInvalidPayload
	}

	p := &Payload{
		Domain:           stringField(root, fieldDomain),
		GPTAnswer:        stringField(root, fieldGPTAnswer),
		DeepSeekAnswer:   stringField(root, fieldDeepSeekAnswer),
		AnthropicAnswer:  stringField(root, fieldAnthropicAnswer),
		GrokAnswer:       stringField(root, fieldGrokAnswer),
		AggregatedAnswer: stringField(root, fieldAggregatedAnswer),
		FinalAnswer:      stringField(root, fieldFinalAnswer),
	}

	if v := root.Get(fieldModelStrengths); v.IsObject() {
		p.ModelStrengths = &Strengths{raw: v.Raw}
	}

	if v := root.Get(fieldUsedModels); v.IsArray() {
		models := make([]string, 0, len(v.Array()))
		for _, m := range v.Array() {
			if m.Type == gjson.String {
				models = append(models, m.Str)
			}
		}
		p.UsedModels = models
	}

	return p, nil
}

func stringField(root gjson.Result, name string) *string {
	v := root.Get(name)
	if v.Type != gjson.String {
		return nil
	}
	s := v.Str
	return &s
}
