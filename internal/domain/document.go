package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DateLayout is the calendar date format used by client documents.
const DateLayout = "2006-01-02"

// ClientsDocument is the JSON interchange format for a batch of clients.
type ClientsDocument struct {
	Clients []ClientDocument `json:"clients"`
}

// ClientDocument is the wire form of a Client.
type ClientDocument struct {
	ID       string            `json:"id"`
	Site     string            `json:"site,omitempty"`
	Episodes []EpisodeDocument `json:"episodes"`
}

// EpisodeDocument is the wire form of an Episode. Dates are ISO calendar dates.
type EpisodeDocument struct {
	ID               string          `json:"id"`
	Type             string          `json:"type,omitempty"`
	Action           string          `json:"action,omitempty"`
	OpenedDate       string          `json:"opened_date,omitempty"`
	ClosedDate       string          `json:"closed_date,omitempty"`
	DiagnosisDate    string          `json:"diagnosis_date,omitempty"`
	IsClosed         *bool           `json:"is_closed,omitempty"`
	ActualOpenedYear *int            `json:"actual_opened_year,omitempty"`
	Lesions          []string        `json:"lesions,omitempty"`
	Events           *EventsDocument `json:"events,omitempty"`
}

// EventsDocument is the wire form of Events.
type EventsDocument struct {
	Screening  []ScreeningDocument `json:"screening,omitempty"`
	Assessment *EventDocument      `json:"assessment,omitempty"`
	Clinical   *EventDocument      `json:"clinical,omitempty"`
	BiopsyWide *EventDocument      `json:"biopsy_wide,omitempty"`
	BiopsyFine *EventDocument      `json:"biopsy_fine,omitempty"`
	Surgery    *EventDocument      `json:"surgery,omitempty"`
}

// EventDocument is the wire form of a BaseEvent.
type EventDocument struct {
	LeftOpinion  string   `json:"left_opinion,omitempty"`
	RightOpinion string   `json:"right_opinion,omitempty"`
	Dates        []string `json:"dates,omitempty"`
}

// ScreeningDocument is the wire form of a Screening event.
type ScreeningDocument struct {
	EventDocument
	Left  *BreastScreeningDocument `json:"left,omitempty"`
	Right *BreastScreeningDocument `json:"right,omitempty"`
}

// BreastScreeningDocument is the wire form of BreastScreeningData.
type BreastScreeningDocument struct {
	Date               string `json:"date,omitempty"`
	EquipmentMakeModel string `json:"equipment_make_model,omitempty"`
	Opinion            string `json:"opinion,omitempty"`
}

// DecodeClients reads a ClientsDocument from r and converts it to clients.
func DecodeClients(r io.Reader) ([]*Client, error) {
	var doc ClientsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode clients document: %w", err)
	}
	return doc.ToClients()
}

// ToClients validates every client in the document and converts it.
func (d *ClientsDocument) ToClients() ([]*Client, error) {
	clients := make([]*Client, 0, len(d.Clients))
	for i := range d.Clients {
		c, err := d.Clients[i].ToClient()
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", i, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// ToClient validates the document and converts it to a Client.
func (d *ClientDocument) ToClient() (*Client, error) {
	if d.ID == "" {
		return nil, NewValidationError("id", "client id is required", d.ID)
	}
	c := &Client{ID: d.ID, Site: d.Site, Episodes: make([]*Episode, 0, len(d.Episodes))}
	for i := range d.Episodes {
		ep, err := d.Episodes[i].ToEpisode()
		if err != nil {
			return nil, fmt.Errorf("client %s: episode %d: %w", d.ID, i, err)
		}
		c.Episodes = append(c.Episodes, ep)
	}
	return c, nil
}

// ToEpisode validates the document and converts it to an Episode.
func (d *EpisodeDocument) ToEpisode() (*Episode, error) {
	var err error
	ep := &Episode{
		ID:               d.ID,
		IsClosed:         d.IsClosed,
		ActualOpenedYear: d.ActualOpenedYear,
		Lesions:          d.Lesions,
	}
	if ep.Type, err = ParseEpisodeType(d.Type); err != nil {
		return nil, err
	}
	if ep.Action, err = ParseAction(d.Action); err != nil {
		return nil, err
	}
	if ep.OpenedDate, err = parseOptionalDate("opened_date", d.OpenedDate); err != nil {
		return nil, err
	}
	if ep.ClosedDate, err = parseOptionalDate("closed_date", d.ClosedDate); err != nil {
		return nil, err
	}
	if ep.DiagnosisDate, err = parseOptionalDate("diagnosis_date", d.DiagnosisDate); err != nil {
		return nil, err
	}
	if d.Events != nil {
		if ep.Events, err = d.Events.toEvents(); err != nil {
			return nil, err
		}
	}
	return ep, nil
}

func (d *EventsDocument) toEvents() (*Events, error) {
	ev := &Events{}
	for i := range d.Screening {
		s, err := d.Screening[i].toScreening()
		if err != nil {
			return nil, fmt.Errorf("screening %d: %w", i, err)
		}
		ev.Screening = append(ev.Screening, s)
	}

	slots := []struct {
		kind EventKind
		src  *EventDocument
		dst  **BaseEvent
	}{
		{EventAssessment, d.Assessment, &ev.Assessment},
		{EventClinical, d.Clinical, &ev.Clinical},
		{EventBiopsyWide, d.BiopsyWide, &ev.BiopsyWide},
		{EventBiopsyFine, d.BiopsyFine, &ev.BiopsyFine},
		{EventSurgery, d.Surgery, &ev.Surgery},
	}
	for _, s := range slots {
		if s.src == nil {
			continue
		}
		base, err := s.src.toBaseEvent()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.kind, err)
		}
		*s.dst = &base
	}
	return ev, nil
}

func (d *EventDocument) toBaseEvent() (BaseEvent, error) {
	var (
		ev  BaseEvent
		err error
	)
	if ev.LeftOpinion, err = ParseSideOpinion(d.LeftOpinion); err != nil {
		return ev, err
	}
	if ev.RightOpinion, err = ParseSideOpinion(d.RightOpinion); err != nil {
		return ev, err
	}
	seen := make(map[time.Time]bool, len(d.Dates))
	for _, raw := range d.Dates {
		t, err := parseDate("dates", raw)
		if err != nil {
			return ev, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		ev.Dates = append(ev.Dates, t)
	}
	return ev, nil
}

func (d *ScreeningDocument) toScreening() (Screening, error) {
	base, err := d.toBaseEvent()
	if err != nil {
		return Screening{}, err
	}
	s := Screening{BaseEvent: base}
	if s.Left, err = d.Left.toData(); err != nil {
		return Screening{}, fmt.Errorf("left: %w", err)
	}
	if s.Right, err = d.Right.toData(); err != nil {
		return Screening{}, fmt.Errorf("right: %w", err)
	}
	return s, nil
}

func (d *BreastScreeningDocument) toData() (*BreastScreeningData, error) {
	if d == nil {
		return nil, nil
	}
	var err error
	data := &BreastScreeningData{EquipmentMakeModel: d.EquipmentMakeModel}
	if data.Date, err = parseOptionalDate("date", d.Date); err != nil {
		return nil, err
	}
	if data.Opinion, err = ParseOpinion(d.Opinion); err != nil {
		return nil, err
	}
	return data, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, NewValidationError(field, "expected date in YYYY-MM-DD form", raw)
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NewDocument converts clients back into their wire form.
func NewDocument(clients []*Client) *ClientsDocument {
	doc := &ClientsDocument{Clients: make([]ClientDocument, 0, len(clients))}
	for _, c := range clients {
		cd := ClientDocument{ID: c.ID, Site: c.Site}
		for _, ep := range c.Episodes {
			cd.Episodes = append(cd.Episodes, newEpisodeDocument(ep))
		}
		doc.Clients = append(doc.Clients, cd)
	}
	return doc
}

func newEpisodeDocument(ep *Episode) EpisodeDocument {
	d := EpisodeDocument{
		ID:               ep.ID,
		Type:             string(ep.Type),
		Action:           string(ep.Action),
		OpenedDate:       formatOptionalDate(ep.OpenedDate),
		ClosedDate:       formatOptionalDate(ep.ClosedDate),
		DiagnosisDate:    formatOptionalDate(ep.DiagnosisDate),
		IsClosed:         ep.IsClosed,
		ActualOpenedYear: ep.ActualOpenedYear,
		Lesions:          ep.Lesions,
	}
	if ep.Events == nil {
		return d
	}
	ev := &EventsDocument{
		Assessment: newEventDocument(ep.Events.Assessment),
		Clinical:   newEventDocument(ep.Events.Clinical),
		BiopsyWide: newEventDocument(ep.Events.BiopsyWide),
		BiopsyFine: newEventDocument(ep.Events.BiopsyFine),
		Surgery:    newEventDocument(ep.Events.Surgery),
	}
	for i := range ep.Events.Screening {
		s := &ep.Events.Screening[i]
		ev.Screening = append(ev.Screening, ScreeningDocument{
			EventDocument: *newEventDocument(&s.BaseEvent),
			Left:          newBreastScreeningDocument(s.Left),
			Right:         newBreastScreeningDocument(s.Right),
		})
	}
	d.Events = ev
	return d
}

func newEventDocument(ev *BaseEvent) *EventDocument {
	if ev == nil {
		return nil
	}
	d := &EventDocument{LeftOpinion: string(ev.LeftOpinion), RightOpinion: string(ev.RightOpinion)}
	for _, t := range ev.Dates {
		d.Dates = append(d.Dates, t.Format(DateLayout))
	}
	return d
}

func newBreastScreeningDocument(data *BreastScreeningData) *BreastScreeningDocument {
	if data == nil {
		return nil
	}
	return &BreastScreeningDocument{
		Date:               formatOptionalDate(data.Date),
		EquipmentMakeModel: data.EquipmentMakeModel,
		Opinion:            string(data.Opinion),
	}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
