package publisher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"

	config "github.com/Alexis-Lijeron/redes/configs"
)

const whatsappStoriesURL = "https://gate.whapi.cloud/stories/send/media"

// WhatsappPublisher posts a story through the Whapi gateway. Media is
// mandatory; either an image or a video works.
type WhatsappPublisher struct {
	token   string
	client  *http.Client
	baseURL string
}

func NewWhatsappPublisher(cfg config.Platform, client *http.Client) *WhatsappPublisher {
	return &WhatsappPublisher{
		token:   cfg.WhatsappToken,
		client:  client,
		baseURL: whatsappStoriesURL,
	}
}

func (p *WhatsappPublisher) Publish(ctx context.Context, content string, media string) (*Result, error) {
	m, err := ResolveMedia(media)
	if err != nil {
		return nil, &ValidationError{Network: "whatsapp", Reason: err.Error()}
	}
	if m == nil {
		return nil, &ValidationError{Network: "whatsapp", Reason: "whatsapp requires an image or video"}
	}

	path := m.LocalPath
	if !m.IsLocal() {
		path, err = download(p.client, m.URL)
		if err != nil {
			return nil, &TransportError{Network: "whatsapp", Err: err}
		}
		defer removeTemp(path)
	}

	file, mimeType, err := readLocal(path)
	if err != nil {
		return nil, &ValidationError{Network: "whatsapp", Reason: err.Error()}
	}

	body, contentType, err := multipartUpload("media", filepath.Base(path), mimeType, file, map[string]string{
		"caption":          content,
		"exclude_contacts": "[]",
	})
	if err != nil {
		return nil, &TransportError{Network: "whatsapp", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, body)
	if err != nil {
		return nil, &TransportError{Network: "whatsapp", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: "whatsapp", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: "whatsapp", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Network: "whatsapp", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &RemoteError{Network: "whatsapp", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var externalID string
	if msg, ok := raw["message"].(map[string]any); ok {
		externalID, _ = msg["id"].(string)
	}

	return &Result{ExternalID: externalID, Raw: raw}, nil
}
