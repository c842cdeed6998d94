package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	config "github.com/Alexis-Lijeron/redes/configs"
)

const facebookGraphURL = "https://graph.facebook.com/v19.0"

// FacebookPublisher posts to a Facebook page feed. Text-only posts are
// allowed; an image can be attached from a public URL or a local file.
type FacebookPublisher struct {
	pageID  string
	token   string
	client  *http.Client
	baseURL string
}

func NewFacebookPublisher(cfg config.Platform, client *http.Client) *FacebookPublisher {
	return &FacebookPublisher{
		pageID:  cfg.FacebookPageID,
		token:   cfg.FacebookAccessToken,
		client:  client,
		baseURL: facebookGraphURL,
	}
}

func (p *FacebookPublisher) Publish(ctx context.Context, content string, media string) (*Result, error) {
	m, err := ResolveMedia(media)
	if err != nil {
		return nil, &ValidationError{Network: "facebook", Reason: err.Error()}
	}

	switch {
	case m == nil:
		return p.postText(ctx, content)
	case m.IsLocal():
		return p.postLocalImage(ctx, m.LocalPath, content)
	default:
		return p.postImageURL(ctx, m.URL, content)
	}
}

func (p *FacebookPublisher) postText(ctx context.Context, message string) (*Result, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", p.token)

	endpoint := fmt.Sprintf("%s/%s/feed", p.baseURL, p.pageID)
	return p.submitForm(ctx, endpoint, form)
}

func (p *FacebookPublisher) postImageURL(ctx context.Context, imageURL, caption string) (*Result, error) {
	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", p.token)

	endpoint := fmt.Sprintf("%s/%s/photos", p.baseURL, p.pageID)
	return p.submitForm(ctx, endpoint, form)
}

func (p *FacebookPublisher) postLocalImage(ctx context.Context, path, caption string) (*Result, error) {
	file, mimeType, err := readLocal(path)
	if err != nil {
		return nil, &ValidationError{Network: "facebook", Reason: err.Error()}
	}

	body, contentType, err := multipartUpload("source", filepath.Base(path), mimeType, file, map[string]string{
		"caption":      caption,
		"access_token": p.token,
		"published":    "true",
	})
	if err != nil {
		return nil, &TransportError{Network: "facebook", Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s/photos", p.baseURL, p.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &TransportError{Network: "facebook", Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	return p.do(req)
}

func (p *FacebookPublisher) submitForm(ctx context.Context, endpoint string, form url.Values) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Network: "facebook", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return p.do(req)
}

func (p *FacebookPublisher) do(req *http.Request) (*Result, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: "facebook", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: "facebook", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Network: "facebook", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &RemoteError{Network: "facebook", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// photo uploads answer with post_id, feed posts with id
	externalID, _ := raw["post_id"].(string)
	if externalID == "" {
		externalID, _ = raw["id"].(string)
	}

	return &Result{ExternalID: externalID, Raw: raw}, nil
}
