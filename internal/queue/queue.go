package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Alexis-Lijeron/redes/internal/models"
)

// taskMaxRetry is the number of retries after the first attempt, so every
// publication gets three attempts total.
const taskMaxRetry = 2

// taskTimeout bounds a single publish attempt end to end, downloads and
// staging included.
const taskTimeout = 5 * time.Minute

// Client wraps the asynq client behind the enqueuer contract the service
// layer depends on.
type Client struct {
	asynq *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynq: asynqClient}
}

func (c *Client) EnqueuePublish(ctx context.Context, publicationID int64, network models.SocialNetwork, content, mediaURL string) (string, error) {
	payload, err := json.Marshal(PublishPayload{
		PublicationID: publicationID,
		Network:       network,
		Content:       content,
		MediaURL:      mediaURL,
	})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypePublish, payload)

	info, err := c.asynq.EnqueueContext(ctx, task,
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	)
	if err != nil {
		return "", err
	}

	return info.ID, nil
}
