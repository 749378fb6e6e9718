package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/timeline"
)

// OutcomeEngine classifies a single episode against the rest of a client's
// history. It holds no state besides its logger and is safe for concurrent use.
type OutcomeEngine struct {
	logger *logrus.Logger
}

// NewOutcomeEngine creates a new outcome engine
func NewOutcomeEngine(logger *logrus.Logger) *OutcomeEngine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OutcomeEngine{logger: logger}
}

// Classify returns the outcome of ep given all of the client's episodes, which
// must include ep itself. The rules are evaluated in precedence order and the
// first that applies decides:
//
//   - the episode's own status: interval cancer, contradicted interval case,
//     malignant, or missing/invalid events;
//   - whether every later episode has valid events and all can be ordered;
//   - whether a later interval case or malignant episode within the prior
//     window makes this episode its prior (CIP, MP);
//   - whether the required follow-up exists with no cancer before it (B, NAB,
//     NA, N).
//
// An undefined outcome is a normal result. The error is reserved for
// conditions the rules do not cover, such as a normal outcome being required
// for an episode whose status is not in the normal family.
func (e *OutcomeEngine) Classify(ep *domain.Episode, all []*domain.Episode, cfg domain.WindowConfig) (domain.EpisodeOutcome, error) {
	status, defined := ep.Status()

	switch {
	case defined && status == domain.EpisodeStatusIntervalCancer:
		return e.decide(ep, domain.Defined(domain.OutcomeIntervalCancer, ""), "interval cancer"), nil
	case ep.Type.IsIntervalCase():
		return e.decide(ep, domain.Undefined(domain.ReasonInvalidEvents, ""), "interval case contradicted by opinions"), nil
	case defined && status == domain.EpisodeStatusMalignant:
		return e.decide(ep, domain.Defined(domain.OutcomeMalignant, ""), "malignant"), nil
	case !ep.HasEvents() || !ep.EventsValid():
		return e.decide(ep, domain.Undefined(domain.ReasonInvalidEvents, ""), "missing or invalid events"), nil
	}

	// An episode missing from the history cannot be placed in it.
	if !contains(all, ep) {
		e.logger.WithField("episode_id", ep.ID).Debug("Episode is not part of the client history")
		return domain.Undefined(domain.ReasonDateError, ""), nil
	}

	subsequent, err := timeline.Subsequent(ep, all)
	if err != nil {
		var dateErr *domain.DateError
		if errors.As(err, &dateErr) {
			e.logger.WithFields(logrus.Fields{
				"episode_id":      ep.ID,
				"undated_episode": dateErr.EpisodeID,
			}).Debug("Episodes cannot be ordered")
			return domain.Undefined(domain.ReasonDateError, ""), nil
		}
		return domain.EpisodeOutcome{}, fmt.Errorf("failed to order episodes: %w", err)
	}

	for _, later := range subsequent {
		if !later.EventsValid() {
			return e.decide(ep, domain.Undefined(domain.ReasonInvalidEvents, ""), "later episode has invalid events"), nil
		}
	}

	if len(subsequent) == 0 {
		return e.classifyLast(ep, status, defined, cfg)
	}

	if out, ok, err := e.classifyPrior(ep, subsequent, cfg); err != nil || ok {
		return out, err
	}

	return e.classifyFollowUp(ep, status, defined, subsequent, cfg)
}

// classifyLast handles an episode with no later episode. Only benign and
// normal outcomes are possible, and only when no follow-up is required.
func (e *OutcomeEngine) classifyLast(ep *domain.Episode, status domain.EpisodeStatus, defined bool, cfg domain.WindowConfig) (domain.EpisodeOutcome, error) {
	if cfg.BenignFollowUp == nil && defined && status == domain.EpisodeStatusBenign {
		return e.decide(ep, domain.Defined(domain.OutcomeBenign, ""), "benign without follow-up"), nil
	}
	if cfg.NormalFollowUp == nil {
		return e.normal(ep, status, defined, "")
	}
	return e.decide(ep, domain.Undefined(domain.ReasonNoSubsequentEpisode, ""), "follow-up required but none exists"), nil
}

// classifyPrior looks for a later interval case or malignant episode close
// enough for ep to be its prior. The bool is false when the scan found neither
// and classification should continue.
func (e *OutcomeEngine) classifyPrior(ep *domain.Episode, subsequent []*domain.Episode, cfg domain.WindowConfig) (domain.EpisodeOutcome, bool, error) {
	ciPrior, cancerPrior, err := priorWindows(ep, subsequent[0], cfg)
	if err != nil {
		return domain.EpisodeOutcome{}, false, err
	}
	longest := max(ciPrior, cancerPrior)

	for _, later := range subsequent {
		within, err := timeline.WithinWindow(ep, later, longest)
		if err != nil {
			return domain.EpisodeOutcome{}, false, fmt.Errorf("failed to compare episodes: %w", err)
		}
		if !within {
			break
		}

		if later.Type.IsIntervalCase() {
			inCI, err := timeline.WithinWindow(ep, later, ciPrior)
			if err != nil {
				return domain.EpisodeOutcome{}, false, fmt.Errorf("failed to compare episodes: %w", err)
			}
			switch {
			case inCI && later.IsIntervalCancer():
				return e.decide(ep, domain.Defined(domain.OutcomeIntervalCancerPrior, later.ID), "prior of interval cancer"), true, nil
			case inCI:
				return e.decide(ep, domain.Undefined(domain.ReasonInvalidEvents, later.ID), "later interval case is ambiguous"), true, nil
			default:
				return e.decide(ep, domain.Undefined(domain.ReasonInvalidPrior, later.ID), "interval case outside prior window"), true, nil
			}
		}

		if s, ok := later.Status(); ok && s == domain.EpisodeStatusMalignant {
			inCancer, err := timeline.WithinWindow(ep, later, cancerPrior)
			if err != nil {
				return domain.EpisodeOutcome{}, false, fmt.Errorf("failed to compare episodes: %w", err)
			}
			if inCancer && later.HasMalignantOpinions() {
				return e.decide(ep, domain.Defined(domain.OutcomeMalignantPrior, later.ID), "prior of malignant episode"), true, nil
			}
			return e.decide(ep, domain.Undefined(domain.ReasonInvalidPrior, later.ID), "malignant episode outside prior window"), true, nil
		}
	}

	return domain.EpisodeOutcome{}, false, nil
}

// priorWindows resolves the interval cancer and malignant prior windows. An
// unset window defaults to the whole months between ep and next, so the
// proximal prior always qualifies.
func priorWindows(ep, next *domain.Episode, cfg domain.WindowConfig) (ci, cancer int, err error) {
	if cfg.CIPrior != nil && cfg.CancerPrior != nil {
		return *cfg.CIPrior, *cfg.CancerPrior, nil
	}

	gap, err := timeline.MonthsBetween(ep, next)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to measure gap to next episode: %w", err)
	}
	ci, cancer = gap, gap
	if cfg.CIPrior != nil {
		ci = *cfg.CIPrior
	}
	if cfg.CancerPrior != nil {
		cancer = *cfg.CancerPrior
	}
	return ci, cancer, nil
}

// classifyFollowUp requires a later non-cancer episode outside the follow-up
// window with no cancer inside it.
func (e *OutcomeEngine) classifyFollowUp(ep *domain.Episode, status domain.EpisodeStatus, defined bool, subsequent []*domain.Episode, cfg domain.WindowConfig) (domain.EpisodeOutcome, error) {
	benign := defined && status == domain.EpisodeStatusBenign

	var months int
	if benign {
		if cfg.BenignFollowUp == nil {
			return e.decide(ep, domain.Defined(domain.OutcomeBenign, ""), "benign without follow-up"), nil
		}
		months = *cfg.BenignFollowUp
	} else {
		if cfg.NormalFollowUp == nil {
			return e.normal(ep, status, defined, "")
		}
		months = *cfg.NormalFollowUp
	}

	var followUp *domain.Episode
	for _, later := range subsequent {
		if !later.HasEvents() {
			return e.decide(ep, domain.Undefined(domain.ReasonInvalidEvents, later.ID), "later episode has no events"), nil
		}
		within, err := timeline.WithinWindow(ep, later, months)
		if err != nil {
			return domain.EpisodeOutcome{}, fmt.Errorf("failed to compare episodes: %w", err)
		}
		if !within {
			followUp = later
			break
		}
		if later.IsCancer() {
			return e.decide(ep, domain.Undefined(domain.ReasonInvalidPrior, later.ID), "cancer inside follow-up window"), nil
		}
	}

	if followUp == nil {
		return e.decide(ep, domain.Undefined(domain.ReasonInvalidFollowUp, ""), "no episode after follow-up window"), nil
	}
	if followUp.IsCancer() {
		return e.decide(ep, domain.Undefined(domain.ReasonInvalidPrior, followUp.ID), "follow-up episode is a cancer"), nil
	}
	if benign {
		return e.decide(ep, domain.Defined(domain.OutcomeBenign, followUp.ID), "benign with follow-up"), nil
	}
	return e.normal(ep, status, defined, followUp.ID)
}

// normal maps a normal-family status to its outcome. Any other status here
// means the rules above missed a case.
func (e *OutcomeEngine) normal(ep *domain.Episode, status domain.EpisodeStatus, defined bool, relatedID string) (domain.EpisodeOutcome, error) {
	outcome, ok := domain.NormalOutcome(status)
	if !defined || !ok {
		e.logger.WithFields(logrus.Fields{
			"episode_id": ep.ID,
			"status":     status,
		}).Warn("Episode status is not in the normal family")
		return domain.EpisodeOutcome{}, &domain.ClassificationError{EpisodeID: ep.ID, Err: domain.ErrUnexpectedStatus}
	}
	return e.decide(ep, domain.Defined(outcome, relatedID), "normal"), nil
}

func (e *OutcomeEngine) decide(ep *domain.Episode, out domain.EpisodeOutcome, rule string) domain.EpisodeOutcome {
	if e.logger.IsLevelEnabled(logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields(out.LogFields())).
			WithField("episode_id", ep.ID).
			WithField("rule", rule).
			Debug("Episode classified")
	}
	return out
}

func contains(episodes []*domain.Episode, ep *domain.Episode) bool {
	for _, candidate := range episodes {
		if candidate == ep {
			return true
		}
	}
	return false
}
