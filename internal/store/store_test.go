package store

import (
	"time"

	"github.com/screening-outcome-classifier/internal/domain"
)

func testRun(id string, createdAt time.Time) *domain.SummaryRun {
	sortDate := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)
	postOp := true

	return &domain.SummaryRun{
		ID:          id,
		CreatedAt:   createdAt,
		Windows:     domain.WindowConfig{NormalFollowUp: domain.Months(36)},
		ClientCount: 2,
		Rows: []domain.SummaryRow{
			{
				ClientID:                      "demd1",
				Site:                          "stge",
				EpisodeID:                     "1",
				EpisodeSortDate:               &sortDate,
				EpisodeStatus:                 domain.EpisodeStatusNormal,
				EpisodeOutcome:                "MP",
				EpisodeOutcomeFutureEpisodeID: "2",
				EpisodeIsPostOp:               &postOp,
				ClientStatus:                  domain.ClientStatusMalignant,
			},
			{
				ClientID:        "demd2",
				EpisodeID:       "1",
				EpisodeOutcome:  domain.OutcomeProcessingError,
				ClientStatus:    domain.ClientStatusNormal,
				ProcessingError: "failed to classify episode 1: unexpected episode status",
			},
		},
	}
}
