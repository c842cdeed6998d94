package service

import "github.com/Alexis-Lijeron/redes/internal/models"

// ResolvePostStatus derives a post's aggregate status from its publications.
// It depends only on the multiset of statuses, never on order.
//
// The rule ordering is load-bearing: once nothing is pending or processing,
// a single published publication makes the whole post published, even next
// to failures. Callers must recompute from the full publication set after
// every status change rather than patching incrementally.
//
// Returns ok=false for an empty set; the post then keeps its current status.
func ResolvePostStatus(pubs []*models.Publication) (string, bool) {
	if len(pubs) == 0 {
		return "", false
	}

	var published, failed, processing, pending int
	for _, pub := range pubs {
		switch pub.Status {
		case models.PublicationStatusPublished:
			published++
		case models.PublicationStatusFailed:
			failed++
		case models.PublicationStatusProcessing:
			processing++
		case models.PublicationStatusPending:
			pending++
		}
	}

	total := len(pubs)
	switch {
	case published == total:
		return models.PostStatusPublished, true
	case failed == total:
		return models.PostStatusFailed, true
	case processing > 0 || pending > 0:
		return models.PostStatusProcessing, true
	case published > 0:
		return models.PostStatusPublished, true
	case failed > 0:
		return models.PostStatusFailed, true
	}

	return "", false
}
