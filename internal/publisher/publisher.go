// Package publisher wraps each social network's publish call behind one
// interface so the queue worker stays platform-agnostic. Adapters normalize
// every outcome into a Result or one of three error kinds: ValidationError,
// RemoteError, TransportError.
package publisher

import (
	"context"
	"net/http"
	"time"

	config "github.com/Alexis-Lijeron/redes/configs"
	"github.com/Alexis-Lijeron/redes/internal/models"
)

// Result is the normalized outcome of a successful publish call.
// ExternalID is the platform's id for the created post; Raw keeps the
// decoded platform response for extra_data.
type Result struct {
	ExternalID string
	Raw        map[string]any
}

// Publisher is the uniform per-network publish contract. media is either a
// public URL, a local file path, or empty for text-only posts.
type Publisher interface {
	Publish(ctx context.Context, content string, media string) (*Result, error)
}

// MediaStager turns a local file into a publicly reachable URL for
// platforms that only ingest URLs.
type MediaStager interface {
	StageLocalFile(ctx context.Context, path string) (string, error)
}

// Registry maps the closed network enum onto its adapter. Every network in
// models.AllNetworks has an entry.
type Registry map[models.SocialNetwork]Publisher

func NewRegistry(cfg config.Platform, stager MediaStager) Registry {
	client := &http.Client{Timeout: 2 * time.Minute}

	return Registry{
		models.NetworkFacebook:  NewFacebookPublisher(cfg, client),
		models.NetworkInstagram: NewInstagramPublisher(cfg, client, stager),
		models.NetworkLinkedin:  NewLinkedinPublisher(cfg, client),
		models.NetworkTiktok:    NewTiktokPublisher(cfg, client),
		models.NetworkWhatsapp:  NewWhatsappPublisher(cfg, client),
	}
}

func (r Registry) Get(network models.SocialNetwork) (Publisher, bool) {
	p, ok := r[network]
	return p, ok
}
