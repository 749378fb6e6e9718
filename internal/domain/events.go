package domain

import (
	"time"
)

// BaseEvent holds the NBSS information for one medical procedure.
// An empty opinion means none was recorded for that side.
type BaseEvent struct {
	LeftOpinion  SideOpinion
	RightOpinion SideOpinion
	// Dates extracted from the left and right lesion data. Distinct, unordered.
	Dates []time.Time
}

// HasOpinion reports whether either side carries the given opinion.
func (e *BaseEvent) HasOpinion(o SideOpinion) bool {
	if e == nil {
		return false
	}
	return e.LeftOpinion == o || e.RightOpinion == o
}

// HasAnyOpinion reports whether at least one side has an opinion recorded.
func (e *BaseEvent) HasAnyOpinion() bool {
	return e != nil && (e.LeftOpinion != "" || e.RightOpinion != "")
}

// BreastScreeningData is side specific breast-screening data.
type BreastScreeningData struct {
	Date               *time.Time
	EquipmentMakeModel string
	Opinion            Opinion
}

// Screening is a screening procedure, with optional per-side reads.
type Screening struct {
	BaseEvent
	Left  *BreastScreeningData
	Right *BreastScreeningData
}

// Events is the collection of procedures recorded for an episode. Screening may
// hold several visits; every other kind is present at most once.
type Events struct {
	Screening  []Screening
	Assessment *BaseEvent
	Clinical   *BaseEvent
	BiopsyWide *BaseEvent
	BiopsyFine *BaseEvent
	Surgery    *BaseEvent
}

// Get returns the non-screening event of the given kind, or nil.
func (e *Events) Get(kind EventKind) *BaseEvent {
	if e == nil {
		return nil
	}
	switch kind {
	case EventAssessment:
		return e.Assessment
	case EventClinical:
		return e.Clinical
	case EventBiopsyWide:
		return e.BiopsyWide
	case EventBiopsyFine:
		return e.BiopsyFine
	case EventSurgery:
		return e.Surgery
	default:
		return nil
	}
}

// Has reports whether an event of the given kind is present.
func (e *Events) Has(kind EventKind) bool {
	if e == nil {
		return false
	}
	if kind == EventScreening {
		return len(e.Screening) > 0
	}
	return e.Get(kind) != nil
}

// Kinds returns the kinds of the events present, in EventKinds order.
func (e *Events) Kinds() []EventKind {
	kinds := make([]EventKind, 0, len(EventKinds))
	for _, k := range EventKinds {
		if e.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// pathology returns the events whose opinions decide malignancy.
func (e *Events) pathology() []*BaseEvent {
	return []*BaseEvent{e.Surgery, e.BiopsyWide, e.BiopsyFine}
}

// Dates flattens every date attached to every present event.
func (e *Events) Dates() []time.Time {
	if e == nil {
		return nil
	}
	var dates []time.Time
	for i := range e.Screening {
		dates = append(dates, e.Screening[i].Dates...)
	}
	for _, k := range EventKinds {
		if ev := e.Get(k); ev != nil {
			dates = append(dates, ev.Dates...)
		}
	}
	return dates
}

// Valid returns false if any present non-screening event has no opinion on
// either side. Such an event implies more than a screening examination took
// place with an unknown outcome.
func (e *Events) Valid() bool {
	if e == nil {
		return true
	}
	for _, k := range EventKinds {
		if k == EventScreening {
			continue
		}
		if ev := e.Get(k); ev != nil && !ev.HasAnyOpinion() {
			return false
		}
	}
	return true
}
