package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/timeline"
)

// SummaryService flattens clients into one report row per episode, classifying
// each episode along the way.
type SummaryService struct {
	logger  *logrus.Logger
	engine  *OutcomeEngine
	workers int
}

// SummariseOptions controls a summary run
type SummariseOptions struct {
	Windows domain.WindowConfig
	// ClientIDs restricts the run to the listed clients. Empty means all.
	ClientIDs []string
}

// NewSummaryService creates a new summary service. workers bounds how many
// clients are processed concurrently; zero or less uses one per CPU.
func NewSummaryService(logger *logrus.Logger, engine *OutcomeEngine, workers int) *SummaryService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &SummaryService{
		logger:  logger,
		engine:  engine,
		workers: workers,
	}
}

// Summarise classifies every episode of every selected client. Rows keep the
// order of the input clients and of each client's episodes. Failures are
// recorded in the affected row and never abort the run; only context
// cancellation does.
func (s *SummaryService) Summarise(ctx context.Context, clients []*domain.Client, opts SummariseOptions) (*domain.SummaryRun, error) {
	if err := opts.Windows.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classification windows: %w", err)
	}

	selected := filterClients(clients, opts.ClientIDs)
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"clients": len(selected),
		"skipped": len(clients) - len(selected),
		"workers": s.workers,
	}).Info("Starting summary run")

	perClient := make([][]domain.SummaryRow, len(selected))
	semaphore := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, client := range selected {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("summary run cancelled: %w", ctx.Err())
		}

		wg.Add(1)
		go func(i int, client *domain.Client) {
			defer wg.Done()
			defer func() { <-semaphore }()
			perClient[i] = s.SummariseClient(client, opts.Windows)
		}(i, client)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summary run cancelled: %w", err)
	}

	run := &domain.SummaryRun{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Windows:     opts.Windows,
		ClientCount: len(selected),
		Rows:        make([]domain.SummaryRow, 0, len(selected)),
	}
	for _, rows := range perClient {
		run.Rows = append(run.Rows, rows...)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":          run.ID,
		"clients":         run.ClientCount,
		"rows":            len(run.Rows),
		"errors":          run.ErrorCount(),
		"processing_time": time.Since(startTime),
	}).Info("Completed summary run")

	return run, nil
}

// SummariseClient returns one row per episode of client, in episode order.
func (s *SummaryService) SummariseClient(client *domain.Client, windows domain.WindowConfig) []domain.SummaryRow {
	clientStatus := client.Status()
	hasPrior := HasPrior(client)

	rows := make([]domain.SummaryRow, 0, len(client.Episodes))
	for _, ep := range client.Episodes {
		row := domain.SummaryRow{
			ClientID:                         client.ID,
			Site:                             client.Site,
			ClientStatus:                     clientStatus,
			ClientHasPrior:                   hasPrior,
			EpisodeID:                        ep.ID,
			EpisodeType:                      ep.Type,
			EpisodeAction:                    ep.Action,
			EpisodeContainsMalignantOpinions: ep.HasMalignantOpinions(),
			EpisodeContainsBenignOpinions:    ep.HasBenignOpinions(),
			EpisodeOpenedDate:                ep.OpenedDate,
			EpisodeClosedDate:                ep.ClosedDate,
			ActualEpisodeOpenedYear:          ep.ActualOpenedYear,
			EpisodeHasEvents:                 ep.HasEvents(),
		}
		if status, ok := ep.Status(); ok {
			row.EpisodeStatus = status
		}

		log := s.logger.WithFields(logrus.Fields{
			"client_id":  client.ID,
			"episode_id": ep.ID,
		})

		if sortDate, err := timeline.CanonicalDate(ep); err != nil {
			log.WithError(err).Warn("Failed to extract sort date")
		} else {
			row.EpisodeSortDate = &sortDate
		}

		if outcome, err := s.classify(ep, client.Episodes, windows); err != nil {
			log.WithError(err).Error("Failed to classify episode")
			row.EpisodeOutcome = domain.OutcomeProcessingError
			row.ProcessingError = err.Error()
		} else {
			row.EpisodeOutcome = outcome.Name()
			row.EpisodeOutcomeFutureEpisodeID = outcome.RelatedEpisodeID
		}

		if postOp, err := IsPostOp(ep, client.Episodes); err != nil {
			log.WithError(err).Warn("Failed to identify post-op status")
		} else {
			row.EpisodeIsPostOp = &postOp
		}

		rows = append(rows, row)
	}
	return rows
}

// classify converts a panic while classifying one episode into an error for
// that row.
func (s *SummaryService) classify(ep *domain.Episode, all []*domain.Episode, windows domain.WindowConfig) (out domain.EpisodeOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during classification: %v", r)
		}
	}()
	return s.engine.Classify(ep, all, windows)
}

func filterClients(clients []*domain.Client, ids []string) []*domain.Client {
	if len(ids) == 0 {
		return clients
	}
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	selected := make([]*domain.Client, 0, len(ids))
	for _, c := range clients {
		if allowed[c.ID] {
			selected = append(selected, c)
		}
	}
	return selected
}

// ReadClientList reads client IDs, one per line. Blank lines are ignored.
func ReadClientList(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}
	return ids, nil
}
