package domain

import (
	"time"
)

// OutcomeProcessingError marks a summary row whose episode failed to classify
// because of a hard error rather than an undefined outcome.
const OutcomeProcessingError = "ProcessingError"

// SummaryRow is one line of the summary report. Every episode of every
// summarised client produces exactly one row.
type SummaryRow struct {
	ClientID       string       `json:"client_id" yaml:"client_id"`
	Site           string       `json:"site,omitempty" yaml:"site,omitempty"`
	ClientStatus   ClientStatus `json:"client_status" yaml:"client_status"`
	ClientHasPrior bool         `json:"client_has_prior" yaml:"client_has_prior"`

	EpisodeID string `json:"episode_id" yaml:"episode_id"`
	// Canonical ordering date; nil when the episode has none.
	EpisodeSortDate *time.Time `json:"episode_sort_date,omitempty" yaml:"episode_sort_date,omitempty"`
	// Empty when the episode status is undefined.
	EpisodeStatus EpisodeStatus `json:"episode_status,omitempty" yaml:"episode_status,omitempty"`
	// Outcome code, undefined reason, or OutcomeProcessingError.
	EpisodeOutcome                   string      `json:"episode_outcome" yaml:"episode_outcome"`
	EpisodeOutcomeFutureEpisodeID    string      `json:"episode_outcome_future_episode_id,omitempty" yaml:"episode_outcome_future_episode_id,omitempty"`
	EpisodeIsPostOp                  *bool       `json:"episode_is_post_op,omitempty" yaml:"episode_is_post_op,omitempty"`
	EpisodeType                      EpisodeType `json:"episode_type,omitempty" yaml:"episode_type,omitempty"`
	EpisodeAction                    Action      `json:"episode_action,omitempty" yaml:"episode_action,omitempty"`
	EpisodeContainsMalignantOpinions bool        `json:"episode_contains_malignant_opinions" yaml:"episode_contains_malignant_opinions"`
	EpisodeContainsBenignOpinions    bool        `json:"episode_contains_benign_opinions" yaml:"episode_contains_benign_opinions"`
	EpisodeOpenedDate                *time.Time  `json:"episode_opened_date,omitempty" yaml:"episode_opened_date,omitempty"`
	EpisodeClosedDate                *time.Time  `json:"episode_closed_date,omitempty" yaml:"episode_closed_date,omitempty"`
	ActualEpisodeOpenedYear          *int        `json:"actual_episode_opened_year,omitempty" yaml:"actual_episode_opened_year,omitempty"`
	EpisodeHasEvents                 bool        `json:"episode_has_events" yaml:"episode_has_events"`

	ProcessingError string `json:"processing_error,omitempty" yaml:"processing_error,omitempty"`
}

// Failed reports whether the row carries a hard classification failure.
func (r *SummaryRow) Failed() bool {
	return r.EpisodeOutcome == OutcomeProcessingError
}

// SummaryRun is the result of summarising a batch of clients.
type SummaryRun struct {
	ID          string       `json:"id" yaml:"id"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	Windows     WindowConfig `json:"windows" yaml:"windows"`
	ClientCount int          `json:"client_count" yaml:"client_count"`
	Rows        []SummaryRow `json:"rows" yaml:"rows"`
}

// ErrorCount returns the number of rows that failed to classify.
func (r *SummaryRun) ErrorCount() int {
	n := 0
	for i := range r.Rows {
		if r.Rows[i].Failed() {
			n++
		}
	}
	return n
}

// Info returns the run header without its rows.
func (r *SummaryRun) Info() RunInfo {
	return RunInfo{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		ClientCount: r.ClientCount,
		RowCount:    len(r.Rows),
		ErrorCount:  r.ErrorCount(),
	}
}

// RunInfo describes a stored run.
type RunInfo struct {
	ID          string    `json:"id" yaml:"id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ClientCount int       `json:"client_count" yaml:"client_count"`
	RowCount    int       `json:"row_count" yaml:"row_count"`
	ErrorCount  int       `json:"error_count" yaml:"error_count"`
}
