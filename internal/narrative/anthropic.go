package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/dungeonmaister/gameserver/internal/game/mapgen"
)

// systemPrompt frames every model call.
const systemPrompt = "You are the narrator of a grim fantasy tabletop game. " +
	"Be vivid but brief, and never break character or mention game mechanics."

// MapParamsResult is what MapParams returns: the parameters plus whether
// they came from the model or the defaults.
type MapParamsResult struct {
	Params      mapgen.Params
	FromDefault bool
}

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// NewAnthropicGenerator creates a Generator backed by the Anthropic API.
//
// Precondition: apiKey, model must be non-empty; maxTokens > 0; logger
// must be non-nil.
func NewAnthropicGenerator(apiKey, model string, maxTokens int64, logger *zap.Logger) *AnthropicGenerator {
	return &AnthropicGenerator{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Narrate implements Generator. Errors and empty responses degrade to
// FallbackNarration; overlong responses are truncated.
func (g *AnthropicGenerator) Narrate(ctx context.Context, nc Context) string {
	text, err := g.complete(ctx, BuildPrompt(nc))
	if err != nil {
		g.logger.Warn("narration failed, using fallback", zap.Error(err))
		return FallbackNarration
	}
	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn("narration empty, using fallback")
		return FallbackNarration
	}
	return truncate(text)
}

// MapParams implements Generator. Any failure along the way (model error,
// no JSON in the response, invalid parameters) falls back to the defaults.
func (g *AnthropicGenerator) MapParams(ctx context.Context, theme string) MapParamsResult {
	prompt := fmt.Sprintf(
		"Produce map generation parameters for a dungeon with the theme %q. "+
			"Respond with a single JSON object with keys propDensity (one of low, medium, high), "+
			"propThemes (array of 2-4 short prop names), and enemyCount (integer 1-4). No other text.",
		theme,
	)
	text, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("map params call failed, using defaults", zap.Error(err))
		return MapParamsResult{Params: mapgen.DefaultParams(), FromDefault: true}
	}
	params, err := ExtractMapParams(text)
	if err != nil {
		g.logger.Warn("map params response invalid, using defaults",
			zap.String("response", truncate(text)),
			zap.Error(err),
		)
		return MapParamsResult{Params: mapgen.DefaultParams(), FromDefault: true}
	}
	return MapParamsResult{Params: params}
}

// complete sends one user message and concatenates the text blocks of the
// response.
func (g *AnthropicGenerator) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative: messages call: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// ExtractMapParams pulls the first JSON object out of a model response and
// validates it as map parameters. Models wrap JSON in prose often enough
// that the outermost braces are located by hand rather than trusting the
// whole response to unmarshal.
func ExtractMapParams(response string) (mapgen.Params, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return mapgen.Params{}, fmt.Errorf("narrative: no JSON object in response")
	}

	var params mapgen.Params
	if err := json.Unmarshal([]byte(response[start:end+1]), &params); err != nil {
		return mapgen.Params{}, fmt.Errorf("narrative: decoding map params: %w", err)
	}
	if params.EnemyCount <= 0 {
		params.EnemyCount = 1
	}
	if err := params.Validate(); err != nil {
		return mapgen.Params{}, err
	}
	return params, nil
}

// DisabledGenerator is used when no API key is configured: every narration
// is the fallback line and every map uses the defaults. Keeps local
// development working without network access.
type DisabledGenerator struct {
	logger *zap.Logger
}

// NewDisabled creates a DisabledGenerator.
func NewDisabled(logger *zap.Logger) *DisabledGenerator {
	return &DisabledGenerator{logger: logger}
}

// Narrate implements Generator.
func (g *DisabledGenerator) Narrate(context.Context, Context) string {
	return FallbackNarration
}

// MapParams implements Generator.
func (g *DisabledGenerator) MapParams(context.Context, string) MapParamsResult {
	return MapParamsResult{Params: mapgen.DefaultParams(), FromDefault: true}
}
