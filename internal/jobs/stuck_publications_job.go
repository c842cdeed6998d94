package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alexis-Lijeron/redes/internal/repository"
)

// stuckThreshold is well past the task timeout plus the full retry schedule,
// so anything still processing by then lost its worker.
const stuckThreshold = 15 * time.Minute

type StuckPublicationsJob struct {
	pub repository.PublicationRepository
}

func NewStuckPublicationsJob(pub repository.PublicationRepository) *StuckPublicationsJob {
	return &StuckPublicationsJob{
		pub: pub,
	}
}

// Sweep reports publications stuck in processing. It only surfaces them for
// an operator: queue state is the source of truth for the task itself, so
// the sweep never rewrites statuses on its own.
func (c *StuckPublicationsJob) Sweep() {
	ctx := context.Background()

	stuck, err := c.pub.ListStuckProcessing(ctx, time.Now().Add(-stuckThreshold))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, pub := range stuck {
		slog.Warn("publication stuck in processing",
			"publication_id", pub.ID,
			"post_id", pub.PostID,
			"network", pub.Network,
			"updated_at", pub.UpdatedAt)
	}
}
