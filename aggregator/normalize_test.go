package aggregator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tidwall/sjson"
)

func mustParse(t *testing.T, raw string) *Payload {
	t.Helper()
	p, err := ParsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("ParsePayload(%s) error = %v", raw, err)
	}
	return p
}

func TestNormalizeAnswerFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "final answer only",
			raw:  `{"final_answer":"X"}`,
			want: "**Refined / Final Answer**: X",
		},
		{
			name: "aggregated wins over final",
			raw:  `{"aggregated_answer":"Y","final_answer":"X"}`,
			want: "**Refined / Final Answer**: Y",
		},
		{
			name: "empty aggregated falls back to final",
			raw:  `{"aggregated_answer":"","final_answer":"X"}`,
			want: "**Refined / Final Answer**: X",
		},
		{
			name: "neither present",
			raw:  `{"domain":"math"}`,
			want: "**Refined / Final Answer**: N/A",
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: "**Refined / Final Answer**: N/A",
		},
		{
			name: "wrong type treated as absent",
			raw:  `{"aggregated_answer":42,"final_answer":"X"}`,
			want: "**Refined / Final Answer**: X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Normalize(mustParse(t, tt.raw))
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeNilPayload(t *testing.T) {
	got, diag := Normalize(nil)
	if got != AnswerHeader+FallbackAnswer {
		t.Fatalf("Normalize(nil) = %q", got)
	}
	if diag.Domain != nil || diag.UsedModels != nil || diag.ModelStrengths != nil {
		t.Fatalf("Normalize(nil) diagnostics = %+v, want empty", diag)
	}
}

func TestNormalizeModelsUsedLine(t *testing.T) {
	got, _ := Normalize(mustParse(t, `{"aggregated_answer":"Y","usedModels":["A","B"]}`))
	want := "Models used: **A + B**\n\n**Refined / Final Answer**: Y"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}

	got, _ = Normalize(mustParse(t, `{"aggregated_answer":"Y","usedModels":[]}`))
	if strings.Contains(got, "Models used") {
		t.Fatalf("empty usedModels should omit the line: %q", got)
	}
}

func TestNormalizeStrengthsBlockKeepsOrder(t *testing.T) {
	raw, _ := sjson.Set(`{}`, "final_answer", "Z")
	raw, _ = sjson.Set(raw, "modelStrengths.grok", "humor")
	raw, _ = sjson.Set(raw, "modelStrengths.gpt", "breadth")
	raw, _ = sjson.Set(raw, "usedModels", []string{"gpt", "grok"})

	got, diag := Normalize(mustParse(t, raw))
	want := "**Model Strengths**:\n```json\n{\n  \"grok\": \"humor\",\n  \"gpt\": \"breadth\"\n}\n```\n\n" +
		"Models used: **gpt + grok**\n\n" +
		"**Refined / Final Answer**: Z"
	if got != want {
		t.Fatalf("Normalize() =\n%s\nwant\n%s", got, want)
	}

	if got := diag.ModelStrengths.Raw(); got != `{"grok":"humor","gpt":"breadth"}` {
		t.Fatalf("diag.ModelStrengths.Raw() = %q", got)
	}
}

func TestNormalizeDiagnosticsCopiesFields(t *testing.T) {
	raw := `{
		"domain":"coding",
		"gpt_answer":"g","deepseek_answer":"d","anthropic_answer":"a","grok_answer":"x",
		"aggregated_answer":"agg","final_answer":"fin",
		"modelStrengths":{"gpt":"breadth"},
		"usedModels":["gpt","deepseek"]
	}`
	_, diag := Normalize(mustParse(t, raw))

	checks := []struct {
		name string
		got  *string
		want string
	}{
		{"domain", diag.Domain, "coding"},
		{"gpt", diag.GPTAnswer, "g"},
		{"deepseek", diag.DeepSeekAnswer, "d"},
		{"anthropic", diag.AnthropicAnswer, "a"},
		{"grok", diag.GrokAnswer, "x"},
		{"aggregated", diag.AggregatedAnswer, "agg"},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %q", c.name, c.got, c.want)
		}
	}
	if len(diag.UsedModels) != 2 || diag.UsedModels[1] != "deepseek" {
		t.Errorf("UsedModels = %v", diag.UsedModels)
	}

	data, err := json.Marshal(diag)
	if err != nil {
		t.Fatalf("json.Marshal(diag) error = %v", err)
	}
	if !strings.Contains(string(data), `"modelStrengths":{"gpt":"breadth"}`) {
		t.Fatalf("marshaled diagnostics = %s", data)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	p := mustParse(t, `{"aggregated_answer":"Y","usedModels":["A"],"modelStrengths":{"A":"a"}}`)
	first, _ := Normalize(p)
	second, _ := Normalize(p)
	if first != second {
		t.Fatalf("Normalize() not deterministic: %q vs %q", first, second)
	}
}

func TestDiagnosticsJSON(t *testing.T) {
	p := mustParse(t, `{"domain":"math","usedModels":["gpt"]}`)
	_, diag := Normalize(p)
	want := "{\n  \"domain\": \"math\",\n  \"usedModels\": [\"gpt\"]\n}"
	if got := diag.JSON(); got != want {
		t.Fatalf("JSON() = %q, want %q", got, want)
	}
	if got := (Diagnostics{}).JSON(); got != "{}" {
		t.Fatalf("empty JSON() = %q, want {}", got)
	}
}

func TestDiagnosticsJSONKeepsMarkup(t *testing.T) {
	p := mustParse(t, `{"gpt_answer":"R&D uses a<b","modelStrengths":{"gpt":"code & <math>"}}`)
	_, diag := Normalize(p)
	got := diag.JSON()

	for _, want := range []string{`"gpt_answer": "R&D uses a<b"`, `"gpt": "code & <math>"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("JSON() = %q, want it to contain %q", got, want)
		}
	}
	for _, escaped := range []string{`\u0026`, `\u003c`, `\u003e`} {
		if strings.Contains(got, escaped) {
			t.Fatalf("JSON() = %q, contains escape %s", got, escaped)
		}
	}
}
