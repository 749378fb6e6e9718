package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/report"
	"github.com/screening-outcome-classifier/internal/service"
	"github.com/screening-outcome-classifier/internal/timeline"
)

// ClassifyRequest asks for the outcome of one episode of a client.
type ClassifyRequest struct {
	Client    domain.ClientDocument `json:"client"`
	EpisodeID string                `json:"episode_id"`
	// Windows overrides the configured windows when present.
	Windows *domain.WindowConfig `json:"windows,omitempty"`
}

// ClassifyResponse is the outcome of one episode.
type ClassifyResponse struct {
	ClientID         string               `json:"client_id"`
	EpisodeID        string               `json:"episode_id"`
	Outcome          string               `json:"outcome"`
	Defined          bool                 `json:"defined"`
	Description      string               `json:"description"`
	RelatedEpisodeID string               `json:"related_episode_id,omitempty"`
	EpisodeStatus    domain.EpisodeStatus `json:"episode_status,omitempty"`
	SortDate         string               `json:"sort_date,omitempty"`
	IsPostOp         *bool                `json:"is_post_op,omitempty"`
	Windows          domain.WindowConfig  `json:"windows"`
}

// SummariseRequest asks for a summary of a batch of clients.
type SummariseRequest struct {
	Clients   []domain.ClientDocument `json:"clients"`
	ClientIDs []string                `json:"client_ids,omitempty"`
	Windows   *domain.WindowConfig    `json:"windows,omitempty"`
	// Save stores the run so it can be fetched later.
	Save bool `json:"save,omitempty"`
}

func (s *Server) windows(override *domain.WindowConfig) domain.WindowConfig {
	if override != nil {
		return *override
	}
	return s.configs.GetWindowConfig()
}

func decodeStrict(body []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleClassify(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	var req ClassifyRequest
	if err := decodeStrict(body, &req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.EpisodeID == "" {
		s.errorResponse(c, http.StatusBadRequest, domain.NewValidationError("episode_id", "episode id is required", req.EpisodeID))
		return
	}

	windows := s.windows(req.Windows)
	if err := windows.Validate(); err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	client, err := req.Client.ToClient()
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}
	ep, err := client.Episode(req.EpisodeID)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("episode %s: %w", req.EpisodeID, err))
		return
	}

	outcome, err := s.engine.Classify(ep, client.Episodes, windows)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"client_id":  client.ID,
			"episode_id": ep.ID,
		}).WithError(err).Error("Failed to classify episode")
		var classErr *domain.ClassificationError
		if errors.As(err, &classErr) {
			classErr.ClientID = client.ID
		}
		s.errorResponse(c, http.StatusUnprocessableEntity, err)
		return
	}

	resp := ClassifyResponse{
		ClientID:         client.ID,
		EpisodeID:        ep.ID,
		Outcome:          outcome.Name(),
		Defined:          outcome.IsDefined(),
		Description:      outcome.Description(),
		RelatedEpisodeID: outcome.RelatedEpisodeID,
		Windows:          windows,
	}
	if status, ok := ep.Status(); ok {
		resp.EpisodeStatus = status
	}
	if sortDate, err := timeline.CanonicalDate(ep); err == nil {
		resp.SortDate = sortDate.Format(domain.DateLayout)
	}
	if postOp, err := service.IsPostOp(ep, client.Episodes); err == nil {
		resp.IsPostOp = &postOp
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSummarise(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", s.configs.GetConfig().Summary.Format))
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	body, ok := s.readBody(c)
	if !ok {
		return
	}

	var req SummariseRequest
	if err := decodeStrict(body, &req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}
	if req.Save && s.store == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, errors.New("run store is disabled"))
		return
	}

	windows := s.windows(req.Windows)

	// Saved runs must get their own ID, so only unsaved reports are cached.
	key := cacheKey(string(format), windows, body)
	if !req.Save {
		if cached, ok := s.cache.get(key); ok {
			c.Header("X-Run-ID", cached.runID)
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, cached.contentType, cached.body)
			return
		}
	}

	doc := domain.ClientsDocument{Clients: req.Clients}
	clients, err := doc.ToClients()
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	run, err := s.summary.Summarise(c.Request.Context(), clients, service.SummariseOptions{
		Windows:   windows,
		ClientIDs: req.ClientIDs,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidWindow) {
			status = http.StatusBadRequest
		}
		s.errorResponse(c, status, err)
		return
	}

	if req.Save {
		if err := s.store.SaveRun(c.Request.Context(), run); err != nil {
			s.errorResponse(c, http.StatusInternalServerError, fmt.Errorf("failed to save run: %w", err))
			return
		}
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, run); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	if !req.Save {
		s.cache.add(key, cachedReport{contentType: format.ContentType(), runID: run.ID, body: buf.Bytes()})
	}

	c.Header("X-Run-ID", run.ID)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.store == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, errors.New("run store is disabled"))
		return false
	}
	return true
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, err)
		return
	}
	s.errorResponse(c, http.StatusInternalServerError, err)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorResponse(c, http.StatusBadRequest, domain.NewValidationError("limit", "limit must be a non-negative integer", raw))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatJSON)))
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, run); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("X-Run-ID", run.ID)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleDeleteRun(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	if err := s.store.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
