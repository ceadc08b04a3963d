package classifier

import (
	"errors"
	"strings"
	"testing"
)

func TestParseResult(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Result
		wantErr bool
	}{
		{name: "plain json", raw: `{"answer": "yes", "confidence": 95}`, want: Result{Answer: AnswerYes, Confidence: 95}},
		{name: "fenced json", raw: "```json\n{\"answer\": \"no\", \"confidence\": 90}\n```", want: Result{Answer: AnswerNo, Confidence: 90}},
		{name: "uppercase answer", raw: `{"answer": "UNCLEAR", "confidence": 40}`, want: Result{Answer: AnswerUnclear, Confidence: 40}},
		{name: "confidence clamped high", raw: `{"answer": "yes", "confidence": 140}`, want: Result{Answer: AnswerYes, Confidence: 100}},
		{name: "confidence clamped low", raw: `{"answer": "no", "confidence": -5}`, want: Result{Answer: AnswerNo, Confidence: 0}},
		{name: "not json", raw: "the customer probably agrees", wantErr: true},
		{name: "answer off schema", raw: `{"answer": "maybe", "confidence": 80}`, wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseResult(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, ErrUnavailable) {
					t.Fatalf("expected ErrUnavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildPromptIncludesOfferAndContext(t *testing.T) {
	p := buildPrompt(Request{
		AmountOwed:   1000,
		OfferedPlan:  "$200/month for 5 months",
		Utterance:    "Can you repeat?",
		PriorContext: "What is this about",
	})
	for _, want := range []string{"$1000.00", "$200/month for 5 months", "Can you repeat?", "What is this about"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestNewAnthropicGatewayValidation(t *testing.T) {
	if _, err := NewAnthropicGateway(AnthropicConfig{Model: "m"}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewAnthropicGateway(AnthropicConfig{APIKey: "k"}); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
