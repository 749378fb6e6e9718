package domain

import (
	"fmt"
)

// Outcome is the classification of an episode given the opinions and types
// of this episode and of the client's subsequent episodes.
type Outcome string

const (
	OutcomeIntervalCancer         Outcome = "CI"
	OutcomeIntervalCancerPrior    Outcome = "CIP"
	OutcomeMalignant              Outcome = "M"
	OutcomeMalignantPrior         Outcome = "MP"
	OutcomeBenign                 Outcome = "B"
	OutcomeNormalAssessmentBiopsy Outcome = "NAB"
	OutcomeNormalAssessment       Outcome = "NA"
	OutcomeNormal                 Outcome = "N"
)

// Outcomes lists the outcomes in order of precedence.
var Outcomes = []Outcome{
	OutcomeIntervalCancer,
	OutcomeMalignant,
	OutcomeIntervalCancerPrior,
	OutcomeMalignantPrior,
	OutcomeBenign,
	OutcomeNormalAssessmentBiopsy,
	OutcomeNormalAssessment,
	OutcomeNormal,
}

// IsValid reports whether o is a known outcome.
func (o Outcome) IsValid() bool {
	for _, v := range Outcomes {
		if o == v {
			return true
		}
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}

// Description returns the human readable outcome.
func (o Outcome) Description() string {
	switch o {
	case OutcomeIntervalCancer:
		return "Interval Cancer"
	case OutcomeIntervalCancerPrior:
		return "Interval Cancer Prior"
	case OutcomeMalignant:
		return "Malignant"
	case OutcomeMalignantPrior:
		return "Malignant Prior"
	case OutcomeBenign:
		return "Benign"
	case OutcomeNormalAssessmentBiopsy:
		return "Normal with assessment and biopsy and subsequent episode"
	case OutcomeNormalAssessment:
		return "Normal with assessment and subsequent episode"
	case OutcomeNormal:
		return "Normal with subsequent non-cancer episode"
	default:
		return "Unknown outcome"
	}
}

// NormalOutcome maps a normal-family episode status onto its outcome.
func NormalOutcome(s EpisodeStatus) (Outcome, bool) {
	switch s {
	case EpisodeStatusNormalAssessmentBiopsy:
		return OutcomeNormalAssessmentBiopsy, true
	case EpisodeStatusNormalAssessment:
		return OutcomeNormalAssessment, true
	case EpisodeStatusNormal:
		return OutcomeNormal, true
	default:
		return "", false
	}
}

// UndefinedReason explains why an episode could not be classified.
// ReasonInvalidCI is never produced; interval cases whose opinions contradict
// their type are reported as ReasonInvalidEvents.
type UndefinedReason string

const (
	ReasonInvalidEvents       UndefinedReason = "InvalidEvents"
	ReasonInvalidFollowUp     UndefinedReason = "InvalidFollowUp"
	ReasonInvalidPrior        UndefinedReason = "InvalidPrior"
	ReasonInvalidCI           UndefinedReason = "InvalidCI"
	ReasonDateError           UndefinedReason = "DateError"
	ReasonNoSubsequentEpisode UndefinedReason = "NoSubsequentEpisode"
)

func (r UndefinedReason) String() string {
	return string(r)
}

// Description returns the human readable reason.
func (r UndefinedReason) Description() string {
	switch r {
	case ReasonInvalidEvents:
		return "No events or invalidated"
	case ReasonInvalidFollowUp:
		return "Follow up too early"
	case ReasonInvalidPrior:
		return "Non-normal found, but CI/MP prior criteria not satisfied"
	case ReasonInvalidCI:
		return "Event opinions contradict CI episode type"
	case ReasonDateError:
		return "Episodes cannot be sorted"
	case ReasonNoSubsequentEpisode:
		return "Subsequent episode not found"
	default:
		return "Unknown reason"
	}
}

// EpisodeOutcome is the result of classifying one episode. Exactly one of
// Outcome and Undefined is set. RelatedEpisodeID names the subsequent episode
// that drove the decision, and is empty when none did.
type EpisodeOutcome struct {
	Outcome          Outcome         `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Undefined        UndefinedReason `json:"undefined,omitempty" yaml:"undefined,omitempty"`
	RelatedEpisodeID string          `json:"related_episode_id,omitempty" yaml:"related_episode_id,omitempty"`
}

// Defined creates a classified result.
func Defined(o Outcome, relatedID string) EpisodeOutcome {
	return EpisodeOutcome{Outcome: o, RelatedEpisodeID: relatedID}
}

// Undefined creates an unclassified result.
func Undefined(r UndefinedReason, relatedID string) EpisodeOutcome {
	return EpisodeOutcome{Undefined: r, RelatedEpisodeID: relatedID}
}

// IsDefined reports whether the episode was classified.
func (o EpisodeOutcome) IsDefined() bool {
	return o.Outcome != ""
}

// Name returns the outcome or undefined reason code.
func (o EpisodeOutcome) Name() string {
	if o.IsDefined() {
		return string(o.Outcome)
	}
	return string(o.Undefined)
}

func (o EpisodeOutcome) String() string {
	if o.RelatedEpisodeID == "" {
		return o.Name()
	}
	return fmt.Sprintf("%s (%s)", o.Name(), o.RelatedEpisodeID)
}

// Description returns the human readable outcome or reason.
func (o EpisodeOutcome) Description() string {
	if o.IsDefined() {
		return o.Outcome.Description()
	}
	return o.Undefined.Description()
}

// LogFields returns structured logging fields for the result.
func (o EpisodeOutcome) LogFields() map[string]any {
	return map[string]any{
		"outcome":            o.Name(),
		"defined":            o.IsDefined(),
		"related_episode_id": o.RelatedEpisodeID,
	}
}

// WindowConfig holds the month windows used by the outcome classifier. A nil
// window is unset, which is distinct from zero.
type WindowConfig struct {
	// Maximum months between an episode and a later interval cancer for the
	// earlier one to be its prior. Unset means the proximal prior always counts.
	CIPrior *int `json:"ci_prior,omitempty" yaml:"ci_prior,omitempty" mapstructure:"ci_prior"`
	// As CIPrior, for a later malignant (non interval) episode.
	CancerPrior *int `json:"cancer_prior,omitempty" yaml:"cancer_prior,omitempty" mapstructure:"cancer_prior"`
	// Months after which a second non-cancer episode must exist for a normal
	// outcome. Unset means no follow-up is required.
	NormalFollowUp *int `json:"normal_follow_up,omitempty" yaml:"normal_follow_up,omitempty" mapstructure:"normal_follow_up"`
	// As NormalFollowUp, for a benign outcome.
	BenignFollowUp *int `json:"benign_follow_up,omitempty" yaml:"benign_follow_up,omitempty" mapstructure:"benign_follow_up"`
}

// Validate rejects negative windows.
func (w WindowConfig) Validate() error {
	for name, v := range map[string]*int{
		"ci_prior":         w.CIPrior,
		"cancer_prior":     w.CancerPrior,
		"normal_follow_up": w.NormalFollowUp,
		"benign_follow_up": w.BenignFollowUp,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s=%d: %w", name, *v, ErrInvalidWindow)
		}
	}
	return nil
}

// Months returns a pointer to n, for building a WindowConfig.
func Months(n int) *int {
	return &n
}

// LogFields returns the windows as logging fields. Unset windows are "unset".
func (w WindowConfig) LogFields() map[string]any {
	fields := make(map[string]any, 4)
	for name, v := range map[string]*int{
		"ci_prior":         w.CIPrior,
		"cancer_prior":     w.CancerPrior,
		"normal_follow_up": w.NormalFollowUp,
		"benign_follow_up": w.BenignFollowUp,
	} {
		if v == nil {
			fields[name] = "unset"
		} else {
			fields[name] = *v
		}
	}
	return fields
}
