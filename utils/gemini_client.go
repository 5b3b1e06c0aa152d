package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/generative-ai-go/genai"
	"github.com/raushankrgupta/fragrance-collection/models"
	"google.golang.org/api/option"
)

const tagPrompt = `You are cataloguing perfume bottle photographs.
Return a JSON array of at most 8 short lowercase tags describing what is visible:
bottle colour, bottle shape, cap material, packaging, and any mood the image conveys.
Return only the JSON array.`

const assistantPrompt = `You are a helpful fragrance assistant. Answer questions about perfumes,
notes, layering and collection care. Keep answers concise.`

// GeminiClient wraps one genai client for image tagging and chat replies.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client. Close it on shutdown.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// TagImage asks the model for descriptive tags of a JPEG image.
func (g *GeminiClient) TagImage(ctx context.Context, jpegData []byte) ([]string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(tagPrompt), genai.ImageData("jpeg", jpegData))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %v", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}
	return ParseTags(text)
}

// Reply continues a conversation with the assistant.
func (g *GeminiClient) Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(assistantPrompt))

	cs := model.StartChat()
	for _, m := range history {
		role := "user"
		if m.Role == models.ChatRoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %v", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format (empty content)")
	}
	return sb.String(), nil
}

// ParseTags decodes a model answer into normalised, de-duplicated tags.
// Code fences around the JSON are tolerated.
func ParseTags(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}
	return NormalizeTags(raw), nil
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
