// Package domain contains the core entities and vocabularies for classifying
// breast-screening episodes recorded by the NHS Breast Screening System (NBSS).
//
// Every categorical code is a closed set modelled as a string type. Codes are the
// short NBSS identifiers (for example "CI" for an interval case); the zero value
// means the code was not recorded.
package domain

import (
	"fmt"
)

// EpisodeType represents the NBSS type of an episode.
type EpisodeType string

const (
	EpisodeTypeContinuedAssessment EpisodeType = "CA"
	EpisodeTypeDelayedTreatment    EpisodeType = "CD"
	EpisodeTypeFollowUpTreatment   EpisodeType = "CF"
	EpisodeTypeIntervalCase        EpisodeType = "CI"
	EpisodeTypeLocalRecurrence     EpisodeType = "CR"
	EpisodeTypeFirstCall           EpisodeType = "F"
	EpisodeTypeGPReferral          EpisodeType = "G"
	EpisodeTypeHigherRisk          EpisodeType = "H"
	EpisodeTypeNonRoutineRecall    EpisodeType = "N"
	EpisodeTypeRoutineRecall       EpisodeType = "R"
	EpisodeTypeSelfReferral        EpisodeType = "S"
	EpisodeTypeOther               EpisodeType = "X"
)

var episodeTypeDescriptions = map[EpisodeType]string{
	EpisodeTypeContinuedAssessment: "Continued Assessment",
	EpisodeTypeDelayedTreatment:    "Delayed Treatment",
	EpisodeTypeFollowUpTreatment:   "Follow-up after treatment",
	EpisodeTypeIntervalCase:        "Interval case",
	EpisodeTypeLocalRecurrence:     "Local Recurrence",
	EpisodeTypeFirstCall:           "First Call",
	EpisodeTypeGPReferral:          "GP Referral",
	EpisodeTypeHigherRisk:          "Higher Risk",
	EpisodeTypeNonRoutineRecall:    "Non-rout Recall",
	EpisodeTypeRoutineRecall:       "Routine Recall",
	EpisodeTypeSelfReferral:        "Self Referral",
	EpisodeTypeOther:               "Other",
}

// IsValid reports whether t is a known episode type.
func (t EpisodeType) IsValid() bool {
	_, ok := episodeTypeDescriptions[t]
	return ok
}

// IsIntervalCase reports whether t is the interval cancer episode type.
func (t EpisodeType) IsIntervalCase() bool {
	return t == EpisodeTypeIntervalCase
}

func (t EpisodeType) String() string {
	return string(t)
}

// Description returns the NBSS description of the episode type.
func (t EpisodeType) Description() string {
	return episodeTypeDescriptions[t]
}

// Action represents the action outcome of an episode.
type Action string

const (
	ActionEarlyRecallClinic    Action = "EC"
	ActionEarlyRecallScreening Action = "ES"
	ActionFineNeedle           Action = "FN"
	ActionFollowUpPostTreat    Action = "FP"
	ActionFurtherViews         Action = "FV"
	ActionInpatientBiopsy      Action = "IP"
	ActionMedicalTreatment     Action = "MT"
	ActionNoAction             Action = "NA"
	ActionSecondFilmOpinion    Action = "R2"
	ActionReviewInClinic       Action = "RC"
	ActionReferral             Action = "RF"
	ActionRoutineRecall        Action = "RR"
	ActionSurgicalTreatment    Action = "ST"
	ActionRepeatFilm           Action = "TR"
	ActionWideBoreNeedle       Action = "WB"
)

var actionDescriptions = map[Action]string{
	ActionEarlyRecallClinic:    "Early Recall for Clinic",
	ActionEarlyRecallScreening: "Early Recall for Screening",
	ActionFineNeedle:           "Fine Needle Aspiration",
	ActionFollowUpPostTreat:    "Follow-up (Post-treatment)",
	ActionFurtherViews:         "Further X-ray views",
	ActionInpatientBiopsy:      "Inpatient biopsy",
	ActionMedicalTreatment:     "Medical Treatment",
	ActionNoAction:             "No Action from this procedure",
	ActionSecondFilmOpinion:    "Routine second film opinion (obsolete)",
	ActionReviewInClinic:       "Review in clinic",
	ActionReferral:             "Referral to consultant/GP",
	ActionRoutineRecall:        "Routine recall for screening",
	ActionSurgicalTreatment:    "Surgical Treatment",
	ActionRepeatFilm:           "Repeat Film (technical)",
	ActionWideBoreNeedle:       "Wide Bore Needle",
}

// IsValid reports whether a is a known episode action.
func (a Action) IsValid() bool {
	_, ok := actionDescriptions[a]
	return ok
}

func (a Action) String() string {
	return string(a)
}

// Description returns the NBSS description of the action.
func (a Action) Description() string {
	return actionDescriptions[a]
}

// SideOpinion is the breast-side specific opinion attached to a procedure.
// Only Benign and Malignant drive classification; the others are carried for reporting.
type SideOpinion string

const (
	SideOpinionBenign     SideOpinion = "OB"
	SideOpinionMalignant  SideOpinion = "OM"
	SideOpinionNormal     SideOpinion = "ON"
	SideOpinionSuspicious SideOpinion = "OS"
	SideOpinionUncertain  SideOpinion = "OU"
)

var sideOpinionDescriptions = map[SideOpinion]string{
	SideOpinionBenign:     "Benign",
	SideOpinionMalignant:  "Malignant",
	SideOpinionNormal:     "Normal",
	SideOpinionSuspicious: "Suspicious",
	SideOpinionUncertain:  "Uncertain",
}

// IsValid reports whether o is a known side opinion.
func (o SideOpinion) IsValid() bool {
	_, ok := sideOpinionDescriptions[o]
	return ok
}

func (o SideOpinion) String() string {
	return string(o)
}

// Description returns the human readable opinion.
func (o SideOpinion) Description() string {
	return sideOpinionDescriptions[o]
}

// Opinion is the procedure opinion code recorded against a screening read.
type Opinion string

var opinionDescriptions = map[Opinion]string{
	"A1": "Assess normal", "A2": "Assess benign", "A3": "Assess uncert'n",
	"A4": "Assess suspic", "A5": "Assess malig",
	"B1": "Unsatis/Normal", "B2": "Benign", "B3": "Benign unc mal",
	"B4": "Susp of malig", "B5": "Malignant", "BA": "Clinical",
	"C1": "Cyt unsatis", "C2": "Cyt benign", "C3": "Cyt atypia",
	"C4": "Cyt susp malig", "C5": "Cyt malig",
	"H0": "Hist unreported", "H1": "Histol normal", "H2": "Histol benign", "H5": "Hist malignant",
	"I1": "Imaging normal", "I2": "Imaging benign", "I3": "Imaging uncertain",
	"I4": "Imaging suspicious", "I5": "Imaging malig",
	"MRI1": "MRI normal", "MRI2": "MRI benign", "MRI3": "MRI indeterminate",
	"MRI4": "MRI suspicious", "MRI5": "MRI malig",
	"OB": "O Benign", "OM": "O Malignant", "ON": "O Normal", "OS": "O Suspicious", "OU": "O Uncertain",
	"P1": "Clin normal", "P2": "Clin benign", "P3": "Clin uncertain",
	"P4": "Clin suspicious", "P5": "Clin malignant",
	"R1": "Rad normal", "R2": "Rad benign", "R3": "Rad uncertain",
	"R4": "Rad suspicious", "R5": "Rad malig",
	"RB": "R Benign", "RM": "R Malignant", "RN": "R Normal", "RO": "R Unreported",
	"RS": "R Suspicious", "RU": "R Uncertain",
	"SH": "History suspic",
	"U1": "USS normal", "U2": "USS benign", "U3": "USS uncertain",
	"U4": "USS suspicious", "U5": "USS malig",
}

// IsValid reports whether o is a known NBSS opinion code.
func (o Opinion) IsValid() bool {
	_, ok := opinionDescriptions[o]
	return ok
}

func (o Opinion) String() string {
	return string(o)
}

// Description returns the NBSS description of the opinion code.
func (o Opinion) Description() string {
	return opinionDescriptions[o]
}

// EventKind names one of the procedure categories of an episode.
type EventKind string

const (
	EventAssessment EventKind = "assessment"
	EventBiopsyFine EventKind = "biopsy_fine"
	EventBiopsyWide EventKind = "biopsy_wide"
	EventClinical   EventKind = "clinical"
	EventScreening  EventKind = "screening"
	EventSurgery    EventKind = "surgery"
)

// EventKinds lists every event kind in a fixed order.
var EventKinds = []EventKind{
	EventScreening,
	EventAssessment,
	EventClinical,
	EventBiopsyWide,
	EventBiopsyFine,
	EventSurgery,
}

// IsValid reports whether k is a known event kind.
func (k EventKind) IsValid() bool {
	switch k {
	case EventAssessment, EventBiopsyFine, EventBiopsyWide, EventClinical, EventScreening, EventSurgery:
		return true
	default:
		return false
	}
}

func (k EventKind) String() string {
	return string(k)
}

// EpisodeStatus summarises a single episode from its own event opinions and type,
// without looking at any other episode.
type EpisodeStatus string

const (
	EpisodeStatusIntervalCancer         EpisodeStatus = "CI"
	EpisodeStatusMalignant              EpisodeStatus = "M"
	EpisodeStatusBenign                 EpisodeStatus = "B"
	EpisodeStatusNormalAssessmentBiopsy EpisodeStatus = "NAB"
	EpisodeStatusNormalAssessment       EpisodeStatus = "NA"
	EpisodeStatusNormal                 EpisodeStatus = "N"
)

// IsNormal reports whether s belongs to the normal family (N, NA, NAB).
func (s EpisodeStatus) IsNormal() bool {
	switch s {
	case EpisodeStatusNormal, EpisodeStatusNormalAssessment, EpisodeStatusNormalAssessmentBiopsy:
		return true
	default:
		return false
	}
}

func (s EpisodeStatus) String() string {
	return string(s)
}

// Description returns a human readable form of the status.
func (s EpisodeStatus) Description() string {
	switch s {
	case EpisodeStatusIntervalCancer:
		return "Interval Cancer"
	case EpisodeStatusMalignant:
		return "Malignant"
	case EpisodeStatusBenign:
		return "Benign"
	case EpisodeStatusNormalAssessmentBiopsy:
		return "Normal with assessment and biopsy"
	case EpisodeStatusNormalAssessment:
		return "Normal with assessment"
	case EpisodeStatusNormal:
		return "Normal"
	default:
		return "Unknown status"
	}
}

// ClientStatus summarises all episodes of a client.
type ClientStatus string

const (
	ClientStatusIntervalCancer ClientStatus = "CI"
	ClientStatusMalignant      ClientStatus = "M"
	ClientStatusBenign         ClientStatus = "B"
	ClientStatusNormal         ClientStatus = "N"
)

func (s ClientStatus) String() string {
	return string(s)
}

// ParseEpisodeType converts an NBSS code into an EpisodeType. An empty code is
// accepted and yields the zero value.
func ParseEpisodeType(code string) (EpisodeType, error) {
	t := EpisodeType(code)
	if code != "" && !t.IsValid() {
		return "", NewValidationError("type", "unknown episode type", code)
	}
	return t, nil
}

// ParseAction converts an NBSS code into an Action. An empty code is accepted.
func ParseAction(code string) (Action, error) {
	a := Action(code)
	if code != "" && !a.IsValid() {
		return "", NewValidationError("action", "unknown episode action", code)
	}
	return a, nil
}

// ParseSideOpinion converts a side opinion code. An empty code is accepted.
func ParseSideOpinion(code string) (SideOpinion, error) {
	o := SideOpinion(code)
	if code != "" && !o.IsValid() {
		return "", NewValidationError("opinion", "unknown side opinion", code)
	}
	return o, nil
}

// ParseOpinion converts a procedure opinion code. An empty code is accepted.
func ParseOpinion(code string) (Opinion, error) {
	o := Opinion(code)
	if code != "" && !o.IsValid() {
		return "", NewValidationError("opinion", fmt.Sprintf("unknown opinion code %q", code), code)
	}
	return o, nil
}
