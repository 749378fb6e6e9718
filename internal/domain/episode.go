package domain

import (
	"time"
)

// Episode is a set of medical procedures associated with the diagnosis or
// treatment of a clinical condition, as recorded by NBSS.
//
// ID is only unique within a client. Events is nil when no procedure was
// recorded. DiagnosisDate is only meaningful for interval case episodes.
type Episode struct {
	ID               string
	Events           *Events
	Type             EpisodeType
	Action           Action
	OpenedDate       *time.Time
	ClosedDate       *time.Time
	DiagnosisDate    *time.Time
	IsClosed         *bool
	ActualOpenedYear *int
	Lesions          []string
}

// HasEvents reports whether any events were recorded for the episode.
func (e *Episode) HasEvents() bool {
	return e.Events != nil
}

// HasMalignantOpinions returns true if a surgery, wide-bore biopsy or fine
// needle biopsy has a malignant opinion on either side.
func (e *Episode) HasMalignantOpinions() bool {
	return e.hasPathologyOpinion(SideOpinionMalignant)
}

// HasBenignOpinions returns true if a surgery, wide-bore biopsy or fine
// needle biopsy has a benign opinion on either side.
func (e *Episode) HasBenignOpinions() bool {
	return e.hasPathologyOpinion(SideOpinionBenign)
}

func (e *Episode) hasPathologyOpinion(o SideOpinion) bool {
	if e.Events == nil {
		return false
	}
	for _, ev := range e.Events.pathology() {
		if ev.HasOpinion(o) {
			return true
		}
	}
	return false
}

// hasPathology reports whether any surgery or biopsy event is present.
func (e *Episode) hasPathology() bool {
	if e.Events == nil {
		return false
	}
	for _, ev := range e.Events.pathology() {
		if ev != nil {
			return true
		}
	}
	return false
}

// IsIntervalCancer returns true for interval case episodes that either have a
// malignant opinion or carry no surgery or biopsy information at all.
func (e *Episode) IsIntervalCancer() bool {
	if !e.Type.IsIntervalCase() {
		return false
	}
	if e.HasMalignantOpinions() {
		return true
	}
	return !e.hasPathology()
}

// EventsValid is false if any non-screening event has null opinions.
func (e *Episode) EventsValid() bool {
	return e.Events.Valid()
}

// Status summarises the episode from its own events and type. The second
// return value is false when the status is undefined: an interval case whose
// opinions contradict its type, missing or invalid events, or a surgery that
// resolved to neither malignant nor benign.
func (e *Episode) Status() (EpisodeStatus, bool) {
	if e.IsIntervalCancer() {
		return EpisodeStatusIntervalCancer, true
	}
	if e.Type.IsIntervalCase() {
		return "", false
	}
	if e.HasMalignantOpinions() {
		return EpisodeStatusMalignant, true
	}
	if e.HasBenignOpinions() {
		return EpisodeStatusBenign, true
	}
	if e.Events == nil || !e.Events.Valid() || e.Events.Surgery != nil {
		return "", false
	}
	if e.Events.Assessment != nil {
		if e.Events.BiopsyFine != nil || e.Events.BiopsyWide != nil {
			return EpisodeStatusNormalAssessmentBiopsy, true
		}
		return EpisodeStatusNormalAssessment, true
	}
	return EpisodeStatusNormal, true
}

// IsCancer reports whether the episode is an interval case, an interval
// cancer, or malignant.
func (e *Episode) IsCancer() bool {
	if e.Type.IsIntervalCase() {
		return true
	}
	status, ok := e.Status()
	return ok && (status == EpisodeStatusIntervalCancer || status == EpisodeStatusMalignant)
}
