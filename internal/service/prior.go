package service

import (
	"fmt"
	"time"

	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/timeline"
)

// HasPrior returns true if a malignant client has a non-malignant episode
// opened before a malignant one. Episodes are scanned in collection order and
// compared by opened date only; episodes without an ID or opened date are
// ignored.
func HasPrior(client *domain.Client) bool {
	if client.Status() != domain.ClientStatusMalignant {
		return false
	}

	var earliestNonMalignant, latestMalignant *time.Time
	for _, ep := range client.Episodes {
		if ep.ID == "" || ep.OpenedDate == nil {
			continue
		}
		opened := ep.OpenedDate

		if ep.HasMalignantOpinions() {
			if latestMalignant == nil || opened.After(*latestMalignant) {
				latestMalignant = opened
			}
		} else if earliestNonMalignant == nil || opened.Before(*earliestNonMalignant) {
			earliestNonMalignant = opened
		}

		if earliestNonMalignant != nil && latestMalignant != nil && earliestNonMalignant.Before(*latestMalignant) {
			return true
		}
	}
	return false
}

// IsPostOp returns true if any episode before ep is an interval case or
// recorded a surgery, whatever its opinion.
func IsPostOp(ep *domain.Episode, all []*domain.Episode) (bool, error) {
	earlier, err := timeline.Preceding(ep, all)
	if err != nil {
		return false, fmt.Errorf("failed to order episodes: %w", err)
	}
	for _, prev := range earlier {
		if prev.Type.IsIntervalCase() || prev.Events.Has(domain.EventSurgery) {
			return true, nil
		}
	}
	return false, nil
}
