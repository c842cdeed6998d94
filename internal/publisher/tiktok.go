package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	config "github.com/Alexis-Lijeron/redes/configs"
)

const tiktokTitleLimit = 150

// TiktokPublisher hands the video to the auxiliary TikTok backend, which
// owns the actual upload session against TikTok. A video is mandatory;
// remote URLs are downloaded first because the backend wants the bytes.
type TiktokPublisher struct {
	client  *http.Client
	baseURL string
}

func NewTiktokPublisher(cfg config.Platform, client *http.Client) *TiktokPublisher {
	return &TiktokPublisher{
		client:  client,
		baseURL: cfg.TiktokAPIURL,
	}
}

func (p *TiktokPublisher) Publish(ctx context.Context, content string, media string) (*Result, error) {
	m, err := ResolveMedia(media)
	if err != nil {
		return nil, &ValidationError{Network: "tiktok", Reason: err.Error()}
	}
	if m == nil {
		return nil, &ValidationError{Network: "tiktok", Reason: "tiktok requires a video"}
	}

	path := m.LocalPath
	if !m.IsLocal() {
		path, err = download(p.client, m.URL)
		if err != nil {
			return nil, &TransportError{Network: "tiktok", Err: err}
		}
		defer removeTemp(path)
	}

	file, mimeType, err := readLocal(path)
	if err != nil {
		return nil, &ValidationError{Network: "tiktok", Reason: err.Error()}
	}

	// The cap is 150 characters, not bytes; slicing the string directly
	// would split multibyte runes.
	title := content
	if runes := []rune(title); len(runes) > tiktokTitleLimit {
		title = string(runes[:tiktokTitleLimit])
	}

	body, contentType, err := multipartUpload("video", filepath.Base(path), mimeType, file, map[string]string{
		"title":           title,
		"privacy_level":   "PUBLIC_TO_EVERYONE",
		"disable_comment": "false",
	})
	if err != nil {
		return nil, &TransportError{Network: "tiktok", Err: err}
	}

	endpoint := fmt.Sprintf("%s/api/tiktok/upload", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &TransportError{Network: "tiktok", Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: "tiktok", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: "tiktok", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Network: "tiktok", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &RemoteError{Network: "tiktok", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	externalID, _ := raw["publish_id"].(string)
	if externalID == "" {
		if data, ok := raw["data"].(map[string]any); ok {
			externalID, _ = data["publish_id"].(string)
		}
	}

	return &Result{ExternalID: externalID, Raw: raw}, nil
}
