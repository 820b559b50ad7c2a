package ai

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"wazivo/internal/config"
	"wazivo/internal/errors"
)

// modelCheckTimeout bounds the model lookup used by health checks
const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client *genai.Client
	config *config.AIConfig
	logger *errors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini client. The client is built once and
// shared by every request.
func NewGeminiProvider(cfg *config.AIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceUnavailable,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Generate implements Provider. It makes exactly one call; retries are left
// to whoever resubmits the request.
func (g *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	tracer := otel.Tracer("wazivo.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.analyze_cv")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
		attribute.Int("input.prompt_length", len(req.UserPrompt)),
	)

	genaiConfig := g.buildAnalysisConfig()
	if g.config.UseSystemPrompts && req.SystemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.UserPrompt), genaiConfig)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}

	text := result.Text()
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return &Response{Text: text, Usage: usage}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// The genai client holds no resources in single-shot mode
	return nil
}

// buildAnalysisConfig asks Gemini for JSON shaped like an AnalysisReport. The
// response is still validated locally; this only steers the model.
func (g *GeminiProvider) buildAnalysisConfig() *genai.GenerateContentConfig {
	stringList := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	levels := []string{"high", "medium", "low"}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"candidateSummary": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":       {Type: genai.TypeString},
						"title":      {Type: genai.TypeString},
						"experience": {Type: genai.TypeString},
						"keySkills":  stringList,
						"location":   {Type: genai.TypeString},
						"seniority": {
							Type: genai.TypeString,
							Enum: []string{"intern", "junior", "mid", "senior", "lead", "principal", "executive"},
						},
					},
					Required: []string{"title", "keySkills"},
				},
				"jobSearch": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"suggestedTitle":    {Type: genai.TypeString},
						"alternativeTitles": stringList,
						"location":          {Type: genai.TypeString},
					},
				},
				"weaknessesAndGaps": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"category": {Type: genai.TypeString},
							"gap":      {Type: genai.TypeString},
							"impact":   {Type: genai.TypeString},
							"priority": {Type: genai.TypeString, Enum: levels},
						},
						Required: []string{"category", "gap", "impact", "priority"},
					},
				},
				"recommendedCourses": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"title":        {Type: genai.TypeString},
							"platform":     {Type: genai.TypeString},
							"duration":     {Type: genai.TypeString},
							"level":        {Type: genai.TypeString},
							"link":         {Type: genai.TypeString},
							"addressesGap": {Type: genai.TypeString},
							"skills":       stringList,
							"cost":         {Type: genai.TypeString},
						},
						Required: []string{"title", "platform"},
					},
				},
				"marketInsights": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"demandLevel":    {Type: genai.TypeString, Enum: levels},
						"avgSalaryRange": {Type: genai.TypeString},
						"trendingSkills": stringList,
					},
					Required: []string{"demandLevel"},
				},
			},
			Required: []string{"candidateSummary", "weaknessesAndGaps", "recommendedCourses", "marketInsights"},
		},
	}

	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		cfg.Temperature = &temperature
	}
	if g.config.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.config.MaxOutputTokens
	}

	return cfg
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
