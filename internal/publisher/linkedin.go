package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	config "github.com/Alexis-Lijeron/redes/configs"
)

const linkedinAPIURL = "https://api.linkedin.com/v2"

// LinkedinPublisher creates UGC posts for the configured author. Text-only
// posts go straight to ugcPosts; an image is first registered and uploaded
// as an asset.
type LinkedinPublisher struct {
	token   string
	author  string
	client  *http.Client
	baseURL string
}

func NewLinkedinPublisher(cfg config.Platform, client *http.Client) *LinkedinPublisher {
	return &LinkedinPublisher{
		token:   cfg.LinkedinToken,
		author:  cfg.LinkedinAuthorURN,
		client:  client,
		baseURL: linkedinAPIURL,
	}
}

func (p *LinkedinPublisher) Publish(ctx context.Context, content string, media string) (*Result, error) {
	m, err := ResolveMedia(media)
	if err != nil {
		return nil, &ValidationError{Network: "linkedin", Reason: err.Error()}
	}

	var assetURN string
	if m != nil {
		path := m.LocalPath
		if !m.IsLocal() {
			path, err = download(p.client, m.URL)
			if err != nil {
				return nil, &TransportError{Network: "linkedin", Err: err}
			}
			defer removeTemp(path)
		}

		assetURN, err = p.uploadImage(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	return p.createPost(ctx, content, assetURN)
}

func (p *LinkedinPublisher) createPost(ctx context.Context, text, assetURN string) (*Result, error) {
	shareContent := map[string]any{
		"shareCommentary":    map[string]any{"text": text},
		"shareMediaCategory": "NONE",
	}
	if assetURN != "" {
		shareContent["shareMediaCategory"] = "IMAGE"
		shareContent["media"] = []map[string]any{
			{"status": "READY", "media": assetURN},
		}
	}

	payload := map[string]any{
		"author":         p.author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	raw, err := p.postJSON(ctx, p.baseURL+"/ugcPosts", payload)
	if err != nil {
		return nil, err
	}

	externalID, _ := raw["id"].(string)
	return &Result{ExternalID: externalID, Raw: raw}, nil
}

// uploadImage runs the registerUpload + binary PUT dance and returns the
// asset URN to reference from the post.
func (p *LinkedinPublisher) uploadImage(ctx context.Context, path string) (string, error) {
	register := map[string]any{
		"registerUploadRequest": map[string]any{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   p.author,
			"serviceRelationships": []map[string]any{
				{"relationshipType": "OWNER", "identifier": "urn:li:userGeneratedContent"},
			},
		},
	}

	raw, err := p.postJSON(ctx, p.baseURL+"/assets?action=registerUpload", register)
	if err != nil {
		return "", err
	}

	value, _ := raw["value"].(map[string]any)
	asset, _ := value["asset"].(string)
	uploadURL := extractUploadURL(value)
	if asset == "" || uploadURL == "" {
		body, _ := json.Marshal(raw)
		return "", &RemoteError{Network: "linkedin", StatusCode: http.StatusOK, Body: "registerUpload response incomplete: " + string(body)}
	}

	file, mimeType, err := readLocal(path)
	if err != nil {
		return "", &ValidationError{Network: "linkedin", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(file))
	if err != nil {
		return "", &TransportError{Network: "linkedin", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", mimeType)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Network: "linkedin", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &RemoteError{Network: "linkedin", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return asset, nil
}

func extractUploadURL(value map[string]any) string {
	mechanism, _ := value["uploadMechanism"].(map[string]any)
	httpUpload, _ := mechanism["com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"].(map[string]any)
	uploadURL, _ := httpUpload["uploadUrl"].(string)
	return uploadURL
}

func (p *LinkedinPublisher) postJSON(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Network: "linkedin", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Network: "linkedin", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: "linkedin", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: "linkedin", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Network: "linkedin", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &raw); err != nil {
			return nil, &RemoteError{Network: "linkedin", StatusCode: resp.StatusCode, Body: string(respBody)}
		}
	}
	if raw == nil {
		raw = map[string]any{}
		if id := resp.Header.Get("X-RestLi-Id"); id != "" {
			raw["id"] = id
		}
	}
	return raw, nil
}
