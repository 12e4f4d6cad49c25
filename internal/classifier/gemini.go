package classifier

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/directive"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
)

// GeminiClassifier implements ChapterAuditor and DirectiveNarrator on
// top of the Gemini API.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClassifier creates a Gemini-backed classifier from config.
func NewGeminiClassifier(ctx context.Context, cfg *config.Config) (*GeminiClassifier, error) {
	if cfg.Classifier.APIKey == "" {
		return nil, fmt.Errorf("classifier API key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Classifier.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Classifier.Model
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	return &GeminiClassifier{
		client:  client,
		model:   model,
		timeout: cfg.ClassifierTimeout(),
	}, nil
}

// generate runs one bounded model call and returns the raw text.
func (g *GeminiClassifier) generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(user, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// AuditChapter classifies one chapter into thread events.
func (g *GeminiClassifier) AuditChapter(ctx context.Context, req AuditRequest) (*AuditResult, error) {
	log := logging.Get(logging.CategoryClassifier)
	log.Info("audit call: novel %s chapter %d, %d open threads, %d chars of text",
		req.NovelID, req.Chapter, len(req.Threads), len(req.ChapterText))

	text, err := g.generate(ctx, auditSystemPrompt, buildAuditPrompt(req))
	if err != nil {
		log.Warn("audit call failed: %v", err)
		return nil, err
	}

	result, err := parseAuditResponse(text)
	if err != nil {
		log.Warn("audit response unparseable: %v", err)
		return nil, err
	}

	log.Info("audit verdict: %d events, %d consistency warnings", len(result.Events), len(result.ConsistencyWarnings))
	return result, nil
}

// NarrateDirective asks the model to color the next chapter's directive.
func (g *GeminiClassifier) NarrateDirective(ctx context.Context, req NarrateRequest) (*directive.Proposal, error) {
	log := logging.Get(logging.CategoryClassifier)

	text, err := g.generate(ctx, narrateSystemPrompt, buildNarratePrompt(req))
	if err != nil {
		log.Warn("narrate call failed: %v", err)
		return nil, err
	}

	var proposal directive.Proposal
	if err := parseNarrateResponse(text, &proposal); err != nil {
		log.Warn("narrate response unparseable: %v", err)
		return nil, err
	}
	return &proposal, nil
}
