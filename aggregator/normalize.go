package aggregator

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/pretty"
)

const (
	// FallbackAnswer is shown when the service sent no usable answer.
	FallbackAnswer = "N/A"
	// AnswerHeader precedes the final answer in the display text.
	AnswerHeader = "**Refined / Final Answer**: "

	strengthsLabel   = "**Model Strengths**:\n"
	modelsUsedPrefix = "Models used: **"
	modelsSeparator  = " + "
)

var strengthsStyle = &pretty.Options{Width: 80, Indent: "  "}

// Diagnostics is the structured breakdown of how an answer was produced,
// shown in the details panel. Absent fields stay nil.
type Diagnostics struct {
	Domain           *string    `json:"domain,omitempty"`
	GPTAnswer        *string    `json:"gpt_answer,omitempty"`
	DeepSeekAnswer   *string    `json:"deepseek_answer,omitempty"`
	AnthropicAnswer  *string    `json:"anthropic_answer,omitempty"`
	GrokAnswer       *string    `json:"grok_answer,omitempty"`
	AggregatedAnswer *string    `json:"aggregated_answer,omitempty"`
	ModelStrengths   *Strengths `json:"modelStrengths,omitempty"`
	UsedModels       []string   `json:"usedModels,omitempty"`
}

// Normalize builds the display text and diagnostics for a payload. It never
// fails; a nil payload is treated as an empty one.
func Normalize(p *Payload) (string, Diagnostics) {
	if p == nil {
		p = &Payload{}
	}

	answer := FallbackAnswer
	switch {
	case nonEmpty(p.AggregatedAnswer):
		answer = *p.AggregatedAnswer
	case nonEmpty(p.FinalAnswer):
		answer = *p.FinalAnswer
	}

	var b strings.Builder
	if p.ModelStrengths != nil {
		b.WriteString(strengthsLabel)
		b.WriteString("```json\n")
		b.WriteString(strings.TrimRight(string(pretty.PrettyOptions([]byte(p.ModelStrengths.Raw()), strengthsStyle)), "\n"))
		b.WriteString("\n```\n\n")
	}
	if len(p.UsedModels) > 0 {
		b.WriteString(modelsUsedPrefix)
		b.WriteString(strings.Join(p.UsedModels, modelsSeparator))
		b.WriteString("**\n\n")
	}
	b.WriteString(AnswerHeader)
	b.WriteString(answer)

	diag := Diagnostics{
		Domain:           p.Domain,
		GPTAnswer:        p.GPTAnswer,
		DeepSeekAnswer:   p.DeepSeekAnswer,
		AnthropicAnswer:  p.AnthropicAnswer,
		GrokAnswer:       p.GrokAnswer,
		AggregatedAnswer: p.AggregatedAnswer,
		ModelStrengths:   p.ModelStrengths,
		UsedModels:       p.UsedModels,
	}
	return b.String(), diag
}

// JSON returns the record as indented JSON for display. Markup characters
// in answers are kept as sent.
func (d Diagnostics) JSON() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return "{}"
	}
	return strings.TrimRight(string(pretty.PrettyOptions(buf.Bytes(), strengthsStyle)), "\n")
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
