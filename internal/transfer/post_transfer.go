package transfer

import "github.com/Alexis-Lijeron/redes/internal/models"

type PostCreation struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AdaptRequest struct {
	PostID      int64    `json:"post_id"`
	Networks    []string `json:"networks"`
	PreviewOnly bool     `json:"preview_only"`
}

// Adaptation is one network's adapted content plus the metadata the LLM
// returns with it.
type Adaptation struct {
	Text                 string   `json:"text"`
	Hashtags             []string `json:"hashtags"`
	SuggestedMediaPrompt string   `json:"suggested_media_prompt"`
	CharacterCount       int      `json:"character_count"`
	Tone                 string   `json:"tone"`
}

type NetworkPreview struct {
	AdaptedText          string   `json:"adapted_text"`
	Hashtags             []string `json:"hashtags"`
	SuggestedMediaPrompt string   `json:"suggested_media_prompt"`
	CharacterCount       int      `json:"character_count"`
	Tone                 string   `json:"tone"`
	Error                string   `json:"error,omitempty"`
}

type AdaptResult struct {
	PostID       int64                                   `json:"post_id"`
	Preview      map[models.SocialNetwork]NetworkPreview `json:"preview,omitempty"`
	Adaptations  map[models.SocialNetwork]string         `json:"adaptations,omitempty"`
	Publications []*models.Publication                   `json:"publications,omitempty"`
}

type PublishRequest struct {
	PostID   int64  `json:"post_id"`
	ImageURL string `json:"image_url"`
}

// EnqueueOutcome reports what happened to one publication when a publish
// request fanned out.
type EnqueueOutcome struct {
	PublicationID int64                `json:"publication_id"`
	Network       models.SocialNetwork `json:"network"`
	Status        string               `json:"status"`
	TaskID        string               `json:"task_id,omitempty"`
	Error         string               `json:"error,omitempty"`
}

type PublishResult struct {
	PostID            int64            `json:"post_id"`
	TotalPublications int              `json:"total_publications"`
	Results           []EnqueueOutcome `json:"results"`
}

type PublicationSummary struct {
	ID           int64                `json:"id"`
	Network      models.SocialNetwork `json:"network"`
	Status       string               `json:"status"`
	PublishedAt  string               `json:"published_at,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Metadata     models.ExtraData     `json:"metadata"`
}

// StatusSummary is the polling surface: the post's aggregate status plus a
// by-status count and the per-publication detail.
type StatusSummary struct {
	PostID            int64                `json:"post_id"`
	PostStatus        string               `json:"post_status"`
	TotalPublications int                  `json:"total_publications"`
	ByStatus          map[string]int       `json:"by_status"`
	Publications      []PublicationSummary `json:"publications"`
}

type PostDetails struct {
	Post         *models.Post          `json:"post"`
	Publications []*models.Publication `json:"publications"`
}

type SettingsUpdate struct {
	DefaultNetworks []string `json:"default_networks"`
}
