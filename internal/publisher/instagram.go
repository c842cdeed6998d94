package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	config "github.com/Alexis-Lijeron/redes/configs"
)

const instagramGraphURL = "https://graph.instagram.com/v19.0"

// InstagramPublisher publishes through the two-step container flow: create
// a media container from a public image URL, then publish it. Instagram
// mandates media; local files are staged to a public URL first.
type InstagramPublisher struct {
	userID  string
	token   string
	client  *http.Client
	stager  MediaStager
	baseURL string
}

func NewInstagramPublisher(cfg config.Platform, client *http.Client, stager MediaStager) *InstagramPublisher {
	return &InstagramPublisher{
		userID:  cfg.InstagramUserID,
		token:   cfg.InstagramToken,
		client:  client,
		stager:  stager,
		baseURL: instagramGraphURL,
	}
}

func (p *InstagramPublisher) Publish(ctx context.Context, content string, media string) (*Result, error) {
	m, err := ResolveMedia(media)
	if err != nil {
		return nil, &ValidationError{Network: "instagram", Reason: err.Error()}
	}
	if m == nil {
		return nil, &ValidationError{Network: "instagram", Reason: "instagram requires an image"}
	}

	imageURL := m.URL
	if m.IsLocal() {
		imageURL, err = p.stager.StageLocalFile(ctx, m.LocalPath)
		if err != nil {
			return nil, &TransportError{Network: "instagram", Err: err}
		}
	}

	creationID, createRaw, err := p.createContainer(ctx, imageURL, content)
	if err != nil {
		return nil, err
	}

	publishRaw, err := p.publishContainer(ctx, creationID)
	if err != nil {
		return nil, err
	}

	externalID, _ := publishRaw["id"].(string)
	return &Result{
		ExternalID: externalID,
		Raw: map[string]any{
			"creation_id": creationID,
			"creation":    createRaw,
			"publish":     publishRaw,
		},
	}, nil
}

func (p *InstagramPublisher) createContainer(ctx context.Context, imageURL, caption string) (string, map[string]any, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", p.token)

	endpoint := fmt.Sprintf("%s/%s/media", p.baseURL, p.userID)
	raw, err := p.submit(ctx, endpoint, form)
	if err != nil {
		return "", nil, err
	}

	creationID, _ := raw["id"].(string)
	if creationID == "" {
		body, _ := json.Marshal(raw)
		return "", nil, &RemoteError{Network: "instagram", StatusCode: http.StatusOK, Body: "container response missing id: " + string(body)}
	}
	return creationID, raw, nil
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, creationID string) (map[string]any, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", p.token)

	endpoint := fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.userID)
	return p.submit(ctx, endpoint, form)
}

func (p *InstagramPublisher) submit(ctx context.Context, endpoint string, form url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Network: "instagram", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: "instagram", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: "instagram", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Network: "instagram", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &RemoteError{Network: "instagram", StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return raw, nil
}
