package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SocialNetwork is the closed set of platforms a publication can target.
type SocialNetwork string

const (
	NetworkFacebook  SocialNetwork = "facebook"
	NetworkInstagram SocialNetwork = "instagram"
	NetworkLinkedin  SocialNetwork = "linkedin"
	NetworkTiktok    SocialNetwork = "tiktok"
	NetworkWhatsapp  SocialNetwork = "whatsapp"
)

// AllNetworks lists every supported network in a stable order.
var AllNetworks = []SocialNetwork{
	NetworkFacebook,
	NetworkInstagram,
	NetworkLinkedin,
	NetworkTiktok,
	NetworkWhatsapp,
}

func ParseNetwork(s string) (SocialNetwork, error) {
	for _, n := range AllNetworks {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unsupported social network: %q", s)
}

const (
	PublicationStatusPending    = "pending"
	PublicationStatusProcessing = "processing"
	PublicationStatusPublished  = "published"
	PublicationStatusFailed     = "failed"
)

// ExtraData is the opaque JSONB payload stored alongside a publication:
// external post ids, queue task ids, the retry flag, raw platform responses.
type ExtraData map[string]any

func (e ExtraData) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e)
}

func (e *ExtraData) Scan(src any) error {
	if src == nil {
		*e = ExtraData{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ExtraData", src)
	}
	if len(raw) == 0 {
		*e = ExtraData{}
		return nil
	}
	return json.Unmarshal(raw, e)
}

// Merge overlays other onto e without dropping existing keys. Keys present
// in both take the new value.
func (e ExtraData) Merge(other ExtraData) ExtraData {
	if e == nil {
		e = ExtraData{}
	}
	for k, v := range other {
		e[k] = v
	}
	return e
}

type Publication struct {
	ID             int64         `db:"id" json:"id"`
	PostID         int64         `db:"post_id" json:"post_id"`
	Network        SocialNetwork `db:"network" json:"network"`
	AdaptedContent string        `db:"adapted_content" json:"adapted_content"`
	Status         string        `db:"status" json:"status"` // pending, processing, published, failed
	PublishedAt    *time.Time    `db:"published_at" json:"published_at"`
	ErrorMessage   string        `db:"error_message" json:"error_message"`
	ExtraData      ExtraData     `db:"extra_data" json:"metadata"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
