package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/Alexis-Lijeron/redes/configs"
	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

const openaiChatURL = "https://api.openai.com/v1/chat/completions"

// ContentAdapter produces a network-specific rendition of a post. The
// orchestrator treats it as opaque and degrades per network when it fails.
type ContentAdapter interface {
	AdaptForNetwork(ctx context.Context, title, content string, network models.SocialNetwork) (*transfer.Adaptation, error)
}

type openaiAdapter struct {
	cfg     config.OpenAI
	client  *http.Client
	baseURL string
}

func NewOpenAIAdapter(cfg config.OpenAI) ContentAdapter {
	return &openaiAdapter{
		cfg:     cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: openaiChatURL,
	}
}

var networkStyle = map[models.SocialNetwork]string{
	models.NetworkFacebook:  "conversational, up to 400 words, emojis welcome",
	models.NetworkInstagram: "visual-first caption under 2200 characters with 5-10 hashtags",
	models.NetworkLinkedin:  "professional tone, under 3000 characters, no more than 3 hashtags",
	models.NetworkTiktok:    "hook-driven video title under 150 characters",
	models.NetworkWhatsapp:  "short story caption under 700 characters, direct and personal",
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (a *openaiAdapter) AdaptForNetwork(ctx context.Context, title, content string, network models.SocialNetwork) (*transfer.Adaptation, error) {
	system := fmt.Sprintf(
		"You adapt marketing content for %s (%s). Answer with a JSON object containing: "+
			`"text", "hashtags" (array), "suggested_media_prompt", "character_count" (number), "tone".`,
		network, networkStyle[network])

	reqBody, err := json.Marshal(chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\nContent: %s", title, content)},
		},
		ResponseFormat: &formatSpec{Type: "json_object"},
		Temperature:    0.7,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding openai response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("openai error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}

	var adaptation transfer.Adaptation
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &adaptation); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding adaptation: %w", err)
	}
	if adaptation.CharacterCount == 0 {
		adaptation.CharacterCount = len(adaptation.Text)
	}

	return &adaptation, nil
}
