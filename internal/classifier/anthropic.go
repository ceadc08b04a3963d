package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultTimeout = 10 * time.Second

const confirmationPrompt = `Analyze this response to determine whether the customer accepted the proposed payment plan.

Amount owed: $%.2f
Offered plan: %s
Customer said: "%s"
%s
Determine:
1. Answer: "yes" | "no" | "unclear"
2. Confidence: 0-100

Respond with JSON only:
{"answer": "...", "confidence": 85}`

// AnthropicGateway implements Gateway over the Anthropic Messages API.
type AnthropicGateway struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewAnthropicGateway(cfg AnthropicConfig) (*AnthropicGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier: api key required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("classifier: model required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AnthropicGateway{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   anthropic.Model(cfg.Model),
		timeout: timeout,
	}, nil
}

func (g *AnthropicGateway) Classify(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return Result{}, fmt.Errorf("%w: empty utterance", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}

	return parseResult(sb.String())
}

func buildPrompt(req Request) string {
	prior := ""
	if strings.TrimSpace(req.PriorContext) != "" {
		prior = fmt.Sprintf("Earlier in the call the customer said: \"%s\"\n", req.PriorContext)
	}
	return fmt.Sprintf(confirmationPrompt, req.AmountOwed, req.OfferedPlan, req.Utterance, prior)
}

// parseResult validates the model output against the answer/confidence schema.
// Anything off-schema fails closed with ErrUnavailable.
func parseResult(raw string) (Result, error) {
	raw = stripCodeFence(raw)

	var out struct {
		Answer     string `json:"answer"`
		Confidence int    `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Result{}, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	answer := Answer(strings.ToLower(strings.TrimSpace(out.Answer)))
	switch answer {
	case AnswerYes, AnswerNo, AnswerUnclear:
	default:
		return Result{}, fmt.Errorf("%w: unexpected answer %q", ErrUnavailable, out.Answer)
	}

	conf := out.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return Result{Answer: answer, Confidence: conf}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
