package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	minSuggestions = 3
	maxSuggestions = 6
)

// Suggester proposes subtask titles for a task. Implementations never fail:
// any problem yields an empty slice.
type Suggester interface {
	SuggestSubtasks(ctx context.Context, title, description string) []string
	Enabled() bool
}

// Noop is used when no API key is configured.
type Noop struct{}

func (Noop) SuggestSubtasks(context.Context, string, string) []string { return nil }
func (Noop) Enabled() bool                                           { return false }

// generator is the slice of the genai client Gemini depends on.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for a JSON array of {"title": ...} objects.
type Gemini struct {
	models  generator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini builds a client for the Gemini API. It does no network I/O.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, model, timeout, logger), nil
}

func newGemini(models generator, model string, timeout time.Duration, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gemini{models: models, model: model, timeout: timeout, logger: logger}
}

func (g *Gemini) Enabled() bool { return true }

func (g *Gemini) SuggestSubtasks(ctx context.Context, title, description string) []string {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(title, description)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		g.logger.Warn("subtask suggestion failed", "task", title, "err", err)
		return nil
	}

	titles, err := ParseSuggestions(resp.Text())
	if err != nil {
		g.logger.Warn("subtask suggestion unparseable", "task", title, "err", err)
		return nil
	}
	g.logger.Debug("subtask suggestions", "task", title, "count", len(titles))
	return titles
}

var responseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString, Description: "A short, actionable subtask name"},
		},
		Required: []string{"title"},
	},
}

// Prompt is the instruction sent to the model.
func Prompt(title, description string) string {
	return fmt.Sprintf("Break down this task into a list of %d-%d logical subtasks: %q (%s)",
		minSuggestions, maxSuggestions, title, description)
}

// ParseSuggestions decodes the model's JSON reply. Blank titles are dropped
// and at most six are kept.
func ParseSuggestions(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var items []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	var titles []string
	for _, it := range items {
		t := strings.TrimSpace(it.Title)
		if t == "" {
			continue
		}
		titles = append(titles, t)
		if len(titles) == maxSuggestions {
			break
		}
	}
	return titles, nil
}
