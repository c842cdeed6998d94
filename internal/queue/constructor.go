package queue

import (
	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/publisher"
	"github.com/Alexis-Lijeron/redes/internal/repository"
)

type Queue struct {
	pr  repository.PostRepository
	pub repository.PublicationRepository
	reg publisher.Registry
}

func NewQueue(
	pr repository.PostRepository,
	pub repository.PublicationRepository,
	reg publisher.Registry) *Queue {
	return &Queue{
		pr:  pr,
		pub: pub,
		reg: reg,
	}
}

const TaskTypePublish = "publication:publish"

type PublishPayload struct {
	PublicationID int64                `json:"publication_id"`
	Network       models.SocialNetwork `json:"network"`
	Content       string               `json:"content"`
	MediaURL      string               `json:"media_url,omitempty"`
}
