package synopsis

import (
	"context"
	"fmt"
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/util"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxOutputTokens = 2048

// GeneratorConfig carries the backend credentials and the model priority
// list. Empty keys disable the corresponding backend.
type GeneratorConfig struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	Models       []string
}

// Generator produces synopses, preferring generative backends and degrading
// to the extractive strategy. Per-model failures are non-fatal: the next
// model in the list is tried until one answers.
type Generator struct {
	geminiClient *genai.Client
	openaiClient *openai.Client
	models       []string
	logger       *zap.Logger
}

func NewGenerator(ctx context.Context, cfg GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	g := &Generator{
		models: cfg.Models,
		logger: logger,
	}
	if len(g.models) == 0 {
		g.models = constants.GenerativeModels
	}

	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		g.geminiClient = client
	}

	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		g.openaiClient = &client
	}

	if g.geminiClient == nil && g.openaiClient == nil {
		logger.Info("No generative backend configured, synopses will be extractive")
	}
	return g, nil
}

// Generative reports whether at least one generative backend is available.
func (g *Generator) Generative() bool {
	return g.geminiClient != nil || g.openaiClient != nil
}

// Summarize produces a synopsis for the transcript. The result always lands
// in the configured length band; Generated records whether a model produced
// the text or the extractive strategy did.
func (g *Generator) Summarize(ctx context.Context, transcript string) (*domain.Synopsis, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, scouterrors.NewContentError("empty transcript", "synopsis")
	}

	text, generated := g.generate(ctx, transcript)
	if !generated {
		text = Extractive(transcript)
	}

	return &domain.Synopsis{
		OutlineText:   text,
		Length:        util.RuneLen(text),
		RawTranscript: transcript,
		Generated:     generated,
	}, nil
}

func (g *Generator) generate(ctx context.Context, transcript string) (string, bool) {
	if !g.Generative() {
		return "", false
	}

	prompt := buildPrompt(transcript)

	if g.geminiClient != nil {
		for _, model := range g.models {
			text, err := g.generateGemini(ctx, model, prompt)
			if err != nil {
				g.logger.Debug("Gemini model failed, trying next",
					zap.String("model", model),
					zap.Error(err),
				)
				continue
			}
			return g.postProcess(text), true
		}
		g.logger.Warn("All Gemini models failed", zap.Int("tried", len(g.models)))
	}

	if g.openaiClient != nil {
		text, err := g.generateOpenAI(ctx, prompt)
		if err != nil {
			g.logger.Warn("OpenAI fallback failed", zap.Error(err))
			return "", false
		}
		return g.postProcess(text), true
	}

	return "", false
}

func (g *Generator) generateGemini(ctx context.Context, model, prompt string) (string, error) {
	temperature := float32(0.4)
	resp, err := g.geminiClient.Models.GenerateContent(ctx, model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return text, nil
}

func (g *Generator) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	resp, err := g.openaiClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4_1Mini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(maxOutputTokens),
		Temperature:         openai.Float(0.4),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

func buildPrompt(transcript string) string {
	band := constants.SynopsisBand
	return fmt.Sprintf(`다음 영상 자막을 바탕으로 강의 시놉시스를 작성해 주세요.

요구사항:
- 4~6개의 번호가 매겨진 섹션으로 구성
- 각 섹션은 2~3문장
- 전체 분량은 %d~%d자 (공백 포함)
- 서론이나 맺음말 없이 바로 본문으로 시작
- 한국어로 작성

자막:
%s`, band.MinLength, band.MaxLength, transcript)
}

// postProcess trims a model answer back into the length band by whole
// sentences. Hard truncation only happens when sentence reassembly cannot
// land inside the band.
func (g *Generator) postProcess(summary string) string {
	band := constants.SynopsisBand
	result := strings.TrimSpace(summary)
	if util.RuneLen(result) <= band.MaxLength {
		return result
	}

	sentences := splitSentences(result)
	var b strings.Builder
	current := 0
	used := 0
	for _, sentence := range sentences {
		sl := util.RuneLen(sentence)
		if current+sl > band.TargetLength {
			break
		}
		b.WriteString(sentence)
		current += sl
		used++
	}

	if current < band.MinLength {
		for _, sentence := range sentences[used:] {
			sl := util.RuneLen(sentence)
			if current+sl > band.MaxLength {
				break
			}
			b.WriteString(sentence)
			current += sl
		}
	}

	result = strings.TrimSpace(b.String())
	if result == "" || util.RuneLen(result) > band.MaxLength {
		result = util.TruncateRunes(strings.TrimSpace(summary), band.TargetLength)
	}
	return result
}
