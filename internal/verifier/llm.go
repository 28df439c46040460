package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/mr1hm/go-raid-alerts/internal/filter"
)

const (
	maxPromptRunes = 800
	maxTokens      = 150
)

const systemPrompt = `You are a Ukrainian air-raid alert classifier.

You receive a Telegram message (Ukrainian or Russian) from an alert channel, together with a keyword-based threat guess produced by an automated filter.

Decide which threats describe an ACTIVE, ONGOING or IMMINENT threat RIGHT NOW as opposed to analytical, historical, forecast, news or recap text.

Rules:
- Only include a threat if the message describes something happening now or about to happen (launch detected, drones in flight, missiles heading to a region).
- Remove threats that were triggered by analytical context ("пускові зони" talks about launch zones in general, not an active launch).
- If the message is purely informational, a recap, statistics, a forecast or a calm situation report, return an empty threats list.
- Do not add threats the keyword filter missed. Only confirm or remove.
- AllClear ("відбій"/"отбой") is always confirmed if the message announces that the threat has ended.
- When in doubt, confirm the keyword guess.

Reply ONLY with a JSON object:
{"threats": ["Ballistic", ...], "reasoning": ["one sentence per choice", ...]}

Valid threat values: Ballistic, Hypersonic, CruiseMissile, GuidedBomb, Missile, Shahed, ReconDrone, Aircraft, AllClear
Empty list means not an active alert: {"threats": [], "reasoning": ["..."]}`

type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// LLMVerifier asks an OpenAI-compatible chat endpoint (Ollama by default)
// to confirm or narrow keyword threats. Every failure returns the keyword
// threats unchanged.
type LLMVerifier struct {
	client *openai.Client
	cfg    Config
}

func NewLLMVerifier(cfg Config) *LLMVerifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	return &LLMVerifier{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (v *LLMVerifier) String() string {
	return fmt.Sprintf("LLMVerifier(model=%s, endpoint=%s, timeout=%s)", v.cfg.Model, v.cfg.Endpoint, v.cfg.Timeout)
}

type verdict struct {
	Threats   []string `json:"threats"`
	Reasoning []string `json:"reasoning"`
}

func (v *LLMVerifier) Verify(ctx context.Context, req filter.VerifyRequest) []filter.ThreatKind {
	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Warn("verifier request failed, keeping keyword threats", "error", err)
		return req.Threats
	}
	if len(resp.Choices) == 0 {
		slog.Warn("verifier returned no choices, keeping keyword threats")
		return req.Threats
	}

	content := resp.Choices[0].Message.Content
	var out verdict
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		slog.Warn("verifier reply is not valid JSON, keeping keyword threats", "error", err, "raw", content)
		return req.Threats
	}
	slog.Debug("verifier verdict", "threats", out.Threats, "reasoning", out.Reasoning)

	return resolve(out.Threats, req.Threats)
}

// resolve maps verdict names to kinds. An empty verdict rejects the message;
// a verdict with no recognisable names is ignored.
func resolve(names []string, keyword []filter.ThreatKind) []filter.ThreatKind {
	if len(names) == 0 {
		return []filter.ThreatKind{}
	}
	var verified []filter.ThreatKind
	for _, name := range names {
		if k, ok := filter.ParseThreatKind(name); ok {
			verified = append(verified, k)
		}
	}
	if len(verified) == 0 {
		slog.Warn("verifier returned unknown threat names, keeping keyword threats", "names", names)
		return keyword
	}
	return verified
}

func userPrompt(req filter.VerifyRequest) string {
	names := make([]string, len(req.Threats))
	for i, k := range req.Threats {
		names[i] = k.Name()
	}
	return fmt.Sprintf("Message from channel:\n```\n%s\n```\nKeyword filter detected: [%s]\nProximity: %s\nNationwide: %t\n\nClassify:",
		truncate(req.Text, maxPromptRunes), strings.Join(names, ", "), proximityName(req.Proximity), req.Nationwide)
}

func proximityName(p filter.Proximity) string {
	switch p {
	case filter.ProximityDistrict:
		return "District"
	case filter.ProximityCity:
		return "City"
	case filter.ProximityOblast:
		return "Oblast"
	default:
		return "None"
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
