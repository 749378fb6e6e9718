package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestEpisodeStatusNormals(t *testing.T) {
	episodes := []*Episode{
		{
			ID: "1",
			Events: &Events{
				Screening:  []Screening{{BaseEvent: BaseEvent{Dates: []time.Time{date(2000, 1, 1)}}}},
				Assessment: &BaseEvent{LeftOpinion: SideOpinionNormal},
				BiopsyFine: &BaseEvent{LeftOpinion: SideOpinionNormal},
			},
		},
		{
			ID: "2",
			Events: &Events{
				Screening:  []Screening{{BaseEvent: BaseEvent{Dates: []time.Time{date(2000, 2, 1)}}}},
				Assessment: &BaseEvent{LeftOpinion: SideOpinionNormal},
			},
		},
		{
			ID: "3",
			Events: &Events{
				Screening: []Screening{{BaseEvent: BaseEvent{Dates: []time.Time{date(2000, 3, 1)}}}},
			},
		},
		{
			// Undated screening is still a valid normal.
			ID:         "4",
			Events:     &Events{Screening: []Screening{{}}},
			OpenedDate: datePtr(2000, 4, 1),
		},
	}
	expected := []EpisodeStatus{
		EpisodeStatusNormalAssessmentBiopsy,
		EpisodeStatusNormalAssessment,
		EpisodeStatusNormal,
		EpisodeStatusNormal,
	}

	for i, ep := range episodes {
		status, ok := ep.Status()
		if !ok || status != expected[i] {
			t.Errorf("episode %s: expected %s, got %q (defined=%v)", ep.ID, expected[i], status, ok)
		}
	}
}

func TestEpisodeStatusUndefined(t *testing.T) {
	tests := []struct {
		name string
		ep   *Episode
	}{
		{
			name: "Surgery without malignant or benign opinion",
			ep:   &Episode{ID: "1", Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionNormal}}},
		},
		{
			name: "Clinical event without opinions",
			ep:   &Episode{ID: "1", Events: &Events{Clinical: &BaseEvent{}}, OpenedDate: datePtr(2000, 4, 1)},
		},
		{
			name: "No events",
			ep:   &Episode{ID: "1"},
		},
		{
			name: "Interval case contradicted by normal surgery",
			ep: &Episode{
				ID:     "2",
				Type:   EpisodeTypeIntervalCase,
				Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionNormal}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, ok := tt.ep.Status(); ok {
				t.Errorf("Expected undefined status, got %s", status)
			}
		})
	}
}

func TestEpisodeStatusCancers(t *testing.T) {
	tests := []struct {
		name     string
		ep       *Episode
		expected EpisodeStatus
	}{
		{"Interval case without events", &Episode{ID: "1", Type: EpisodeTypeIntervalCase}, EpisodeStatusIntervalCancer},
		{
			"Interval case with malignant surgery",
			&Episode{ID: "2", Type: EpisodeTypeIntervalCase, Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionMalignant}}},
			EpisodeStatusIntervalCancer,
		},
		{
			"Malignant surgery",
			&Episode{ID: "3", Type: EpisodeTypeRoutineRecall, Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionMalignant}}},
			EpisodeStatusMalignant,
		},
		{
			"Malignant fine needle biopsy",
			&Episode{ID: "4", Type: EpisodeTypeRoutineRecall, Events: &Events{BiopsyFine: &BaseEvent{LeftOpinion: SideOpinionMalignant}}},
			EpisodeStatusMalignant,
		},
		{
			"Malignant wide bore biopsy",
			&Episode{ID: "5", Events: &Events{BiopsyWide: &BaseEvent{RightOpinion: SideOpinionMalignant}}},
			EpisodeStatusMalignant,
		},
		{
			"Benign surgery",
			&Episode{ID: "6", Type: EpisodeTypeRoutineRecall, Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionBenign}}},
			EpisodeStatusBenign,
		},
		{
			"Benign wide bore biopsy",
			&Episode{ID: "7", Events: &Events{BiopsyWide: &BaseEvent{LeftOpinion: SideOpinionBenign}}},
			EpisodeStatusBenign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := tt.ep.Status()
			if !ok || status != tt.expected {
				t.Errorf("Expected %s, got %q (defined=%v)", tt.expected, status, ok)
			}
		})
	}
}

func TestEpisodeOpinions(t *testing.T) {
	benign := &BaseEvent{LeftOpinion: SideOpinionBenign}
	malignant := &BaseEvent{LeftOpinion: SideOpinionMalignant}

	for _, o := range []SideOpinion{SideOpinionMalignant, SideOpinionNormal, SideOpinionSuspicious, SideOpinionUncertain} {
		ep := &Episode{ID: "a", Events: &Events{Surgery: &BaseEvent{LeftOpinion: o}}}
		if ep.HasBenignOpinions() {
			t.Errorf("Surgery opinion %s should not be benign", o)
		}
	}
	for _, o := range []SideOpinion{SideOpinionBenign, SideOpinionNormal, SideOpinionSuspicious, SideOpinionUncertain} {
		ep := &Episode{ID: "a", Events: &Events{Surgery: &BaseEvent{LeftOpinion: o}}}
		if ep.HasMalignantOpinions() {
			t.Errorf("Surgery opinion %s should not be malignant", o)
		}
	}

	for _, pair := range [][2]*BaseEvent{{benign, malignant}, {malignant, benign}} {
		ep := &Episode{ID: "a", Events: &Events{Surgery: pair[0], BiopsyWide: pair[1]}}
		if !ep.HasBenignOpinions() || !ep.HasMalignantOpinions() {
			t.Errorf("Expected both benign and malignant opinions")
		}
	}

	right := &BaseEvent{RightOpinion: SideOpinionMalignant}
	for _, events := range []*Events{{Surgery: right}, {BiopsyWide: right}, {BiopsyFine: right}} {
		ep := &Episode{ID: "a", Events: events}
		if !ep.HasMalignantOpinions() {
			t.Errorf("Expected right side malignant opinion to count")
		}
	}

	screeningOnly := &Episode{ID: "a", Events: &Events{Assessment: malignant}}
	if screeningOnly.HasMalignantOpinions() {
		t.Errorf("Assessment opinions should not count as pathology")
	}
}

func TestEpisodeIsIntervalCancer(t *testing.T) {
	tests := []struct {
		name     string
		opinion  SideOpinion
		expected bool
	}{
		{"Malignant", SideOpinionMalignant, true},
		{"Benign", SideOpinionBenign, false},
		{"Normal", SideOpinionNormal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := &Episode{
				ID:     "1",
				Type:   EpisodeTypeIntervalCase,
				Events: &Events{Surgery: &BaseEvent{LeftOpinion: tt.opinion}},
			}
			if ep.IsIntervalCancer() != tt.expected {
				t.Errorf("Expected IsIntervalCancer()=%v", tt.expected)
			}
		})
	}

	noEvents := &Episode{ID: "1", Type: EpisodeTypeIntervalCase}
	if !noEvents.IsIntervalCancer() {
		t.Errorf("Interval case without events should be an interval cancer")
	}
	notCI := &Episode{ID: "1", Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionMalignant}}}
	if notCI.IsIntervalCancer() {
		t.Errorf("Only interval case episodes can be interval cancers")
	}
}

func TestEpisodeIsCancer(t *testing.T) {
	tests := []struct {
		name     string
		ep       *Episode
		expected bool
	}{
		{"Interval case type", &Episode{Type: EpisodeTypeIntervalCase, Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionBenign}}}, true},
		{"Malignant", &Episode{Events: &Events{BiopsyFine: &BaseEvent{LeftOpinion: SideOpinionMalignant}}}, true},
		{"Benign", &Episode{Events: &Events{BiopsyFine: &BaseEvent{LeftOpinion: SideOpinionBenign}}}, false},
		{"Normal", &Episode{Events: &Events{Screening: []Screening{{}}}}, false},
		{"No events", &Episode{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ep.IsCancer() != tt.expected {
				t.Errorf("Expected IsCancer()=%v", tt.expected)
			}
		})
	}
}

func TestEventsValid(t *testing.T) {
	var none *Events
	if !none.Valid() {
		t.Errorf("Absent events should be valid")
	}
	if !(&Events{Screening: []Screening{{}}}).Valid() {
		t.Errorf("Screening without opinions should be valid")
	}
	if (&Events{Assessment: &BaseEvent{}}).Valid() {
		t.Errorf("Assessment without opinions should be invalid")
	}
	if !(&Events{Assessment: &BaseEvent{RightOpinion: SideOpinionUncertain}}).Valid() {
		t.Errorf("One sided opinion should be valid")
	}
}

func TestEventsDatesAndKinds(t *testing.T) {
	ev := &Events{
		Screening: []Screening{
			{BaseEvent: BaseEvent{Dates: []time.Time{date(2000, 2, 1)}}},
			{BaseEvent: BaseEvent{Dates: []time.Time{date(2000, 3, 1)}}},
		},
		Surgery: &BaseEvent{Dates: []time.Time{date(2000, 1, 1)}, LeftOpinion: SideOpinionBenign},
	}

	if got := len(ev.Dates()); got != 3 {
		t.Errorf("Expected 3 dates, got %d", got)
	}
	kinds := ev.Kinds()
	if len(kinds) != 2 || kinds[0] != EventScreening || kinds[1] != EventSurgery {
		t.Errorf("Unexpected kinds %v", kinds)
	}
	if ev.Has(EventAssessment) {
		t.Errorf("Assessment should be absent")
	}
}
