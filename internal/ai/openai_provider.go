package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkotl/macrolog/internal/config"
)

type OpenAIProvider struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (p *OpenAIProvider) AnalyzeMeal(ctx context.Context, req AnalyzeRequest) (MealEstimate, error) {
	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages:    p.buildMessages(req),
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return MealEstimate{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return MealEstimate{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return MealEstimate{}, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return MealEstimate{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return MealEstimate{}, fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return MealEstimate{}, err
	}
	if len(parsed.Choices) == 0 {
		return MealEstimate{}, fmt.Errorf("openai response does not contain choices")
	}

	return parseEstimate(parsed.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildMessages(req AnalyzeRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	messages = append(messages, chatMessage{
		Role:    "system",
		Content: systemPrompt,
	})

	if len(req.ImageData) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.ImageData)

		text := strings.TrimSpace(req.Text)
		if text == "" {
			text = "Estimate the nutrition of the meal in this photo."
		}

		messages = append(messages, chatMessage{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: text},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		})
		return messages
	}

	messages = append(messages, chatMessage{
		Role:    "user",
		Content: req.Text,
	})
	return messages
}

const systemPrompt = "You are a nutrition estimator. " +
	"Given a meal description or photo, respond with a single JSON object and nothing else: " +
	`{"name":"short dish name","calories_kcal":0,"carbs_g":0,"protein_g":0,"fat_g":0}. ` +
	"All numbers are for the whole portion described. " +
	"If the portion size is unclear, assume a standard single serving. " +
	`If no food can be identified, respond with exactly {"error":"not food"}.`

// parseEstimate decodes the model's reply into an estimate. Responses that
// are not valid JSON, name no dish, or carry negative numbers are rejected.
// A failed analysis must surface as an error, never as an empty meal.
func parseEstimate(content string) (MealEstimate, error) {
	cleaned := cleanModelJSON(content)

	var reply struct {
		Name         string  `json:"name"`
		CaloriesKcal float64 `json:"calories_kcal"`
		CarbsG       float64 `json:"carbs_g"`
		ProteinG     float64 `json:"protein_g"`
		FatG         float64 `json:"fat_g"`
		Error        string  `json:"error"`
	}
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return MealEstimate{}, fmt.Errorf("parse model response: %w", err)
	}

	if reply.Error != "" || strings.TrimSpace(reply.Name) == "" {
		return MealEstimate{}, ErrUnrecognizedMeal
	}
	if reply.CaloriesKcal < 0 || reply.CarbsG < 0 || reply.ProteinG < 0 || reply.FatG < 0 {
		return MealEstimate{}, fmt.Errorf("model returned negative nutrition values")
	}

	return MealEstimate{
		Name:         strings.TrimSpace(reply.Name),
		CaloriesKcal: reply.CaloriesKcal,
		CarbsG:       reply.CarbsG,
		ProteinG:     reply.ProteinG,
		FatG:         reply.FatG,
	}, nil
}

// cleanModelJSON strips the markdown code fences models like to wrap JSON in.
func cleanModelJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
