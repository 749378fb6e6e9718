// Package report renders summary runs as CSV, JSON or YAML.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/screening-outcome-classifier/internal/domain"
)

// Format is an output encoding for a summary run.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name in any case. An empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", domain.NewValidationError("format", "unsupported report format", name)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Header is the first CSV record. Column order is part of the report format.
var Header = []string{
	"ClientID",
	"Site",
	"EpisodeID",
	"EpisodeSortDate",
	"EpisodeStatus",
	"EpisodeOutcome",
	"EpisodeOutcomeFutureEpisodeID",
	"EpisodeIsPostOp",
	"EpisodeType",
	"EpisodeAction",
	"EpisodeContainsMalignantOpinions",
	"EpisodeContainsBenignOpinions",
	"EpisodeOpenedDate",
	"EpisodeClosedDate",
	"ActualEpisodeOpenedYear",
	"EpisodeHasEvents",
	"ClientStatus",
	"ClientHasPrior",
	"ProcessingError",
}

// Write renders run in the given format.
func Write(w io.Writer, format Format, run *domain.SummaryRun) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, run.Rows)
	case FormatJSON:
		return WriteJSON(w, run)
	case FormatYAML:
		return WriteYAML(w, run)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []domain.SummaryRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range rows {
		if err := writer.Write(Record(&rows[i])); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Record converts row to CSV fields in Header order. Missing values are
// empty, booleans are True or False and dates are YYYY-MM-DD.
func Record(row *domain.SummaryRow) []string {
	return []string{
		row.ClientID,
		row.Site,
		row.EpisodeID,
		formatDate(row.EpisodeSortDate),
		string(row.EpisodeStatus),
		row.EpisodeOutcome,
		row.EpisodeOutcomeFutureEpisodeID,
		formatOptionalBool(row.EpisodeIsPostOp),
		string(row.EpisodeType),
		string(row.EpisodeAction),
		formatBool(row.EpisodeContainsMalignantOpinions),
		formatBool(row.EpisodeContainsBenignOpinions),
		formatDate(row.EpisodeOpenedDate),
		formatDate(row.EpisodeClosedDate),
		formatOptionalInt(row.ActualEpisodeOpenedYear),
		formatBool(row.EpisodeHasEvents),
		string(row.ClientStatus),
		formatBool(row.ClientHasPrior),
		row.ProcessingError,
	}
}

// WriteJSON writes run as an indented JSON document.
func WriteJSON(w io.Writer, run *domain.SummaryRun) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(run); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}

// WriteYAML writes run as a YAML document.
func WriteYAML(w io.Writer, run *domain.SummaryRun) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(run); err != nil {
		return fmt.Errorf("failed to encode yaml report: %w", err)
	}
	return encoder.Close()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatOptionalBool(b *bool) string {
	if b == nil {
		return ""
	}
	return formatBool(*b)
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
