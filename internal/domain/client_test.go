package domain

import (
	"errors"
	"testing"
)

func normalEpisode() *Episode {
	return &Episode{ID: "a", Events: &Events{Assessment: &BaseEvent{LeftOpinion: SideOpinionNormal}}}
}

func benignEpisode() *Episode {
	return &Episode{ID: "a", Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionBenign}}}
}

func malignantEpisode() *Episode {
	return &Episode{ID: "a", Events: &Events{Surgery: &BaseEvent{LeftOpinion: SideOpinionMalignant}}}
}

func intervalCaseEpisode() *Episode {
	return &Episode{ID: "a", Type: EpisodeTypeIntervalCase}
}

func TestClientStatus(t *testing.T) {
	tests := []struct {
		name     string
		episodes []*Episode
		expected ClientStatus
	}{
		{"Normal", []*Episode{normalEpisode()}, ClientStatusNormal},
		{"Benign", []*Episode{normalEpisode(), benignEpisode()}, ClientStatusBenign},
		{"Malignant", []*Episode{normalEpisode(), benignEpisode(), malignantEpisode()}, ClientStatusMalignant},
		{"Interval cancer", []*Episode{normalEpisode(), benignEpisode(), malignantEpisode(), intervalCaseEpisode()}, ClientStatusIntervalCancer},
		{"Interval case first", []*Episode{intervalCaseEpisode(), malignantEpisode()}, ClientStatusIntervalCancer},
		{"No episodes", nil, ClientStatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{ID: "demd1", Episodes: tt.episodes}
			if got := client.Status(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestClientEpisode(t *testing.T) {
	ep := &Episode{ID: "2"}
	client := &Client{ID: "demd1", Episodes: []*Episode{{ID: "1"}, ep}}

	got, err := client.Episode("2")
	if err != nil || got != ep {
		t.Errorf("Expected episode 2, got %v (%v)", got, err)
	}

	if _, err := client.Episode("3"); !errors.Is(err, ErrEpisodeNotFound) {
		t.Errorf("Expected ErrEpisodeNotFound, got %v", err)
	}
}
