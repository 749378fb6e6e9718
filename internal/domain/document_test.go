package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const sampleDocument = `{
  "clients": [
    {
      "id": "demd1",
      "site": "stge",
      "episodes": [
        {
          "id": "1",
          "type": "R",
          "action": "FP",
          "opened_date": "2010-01-01",
          "events": {
            "screening": [
              {
                "dates": ["2010-01-05", "2010-01-05"],
                "left": {"date": "2010-01-05", "equipment_make_model": "HOLOGIC", "opinion": "RN"}
              }
            ],
            "assessment": {"left_opinion": "ON", "dates": ["2010-02-01"]}
          }
        },
        {
          "id": "2",
          "type": "CI",
          "diagnosis_date": "2011-06-01"
        }
      ]
    }
  ]
}`

func TestDecodeClients(t *testing.T) {
	clients, err := DecodeClients(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("Expected 1 client, got %d", len(clients))
	}

	c := clients[0]
	if c.ID != "demd1" || c.Site != "stge" || len(c.Episodes) != 2 {
		t.Fatalf("Unexpected client %+v", c)
	}

	first := c.Episodes[0]
	if first.Type != EpisodeTypeRoutineRecall {
		t.Errorf("Expected type R, got %s", first.Type)
	}
	if first.OpenedDate == nil || !first.OpenedDate.Equal(date(2010, 1, 1)) {
		t.Errorf("Unexpected opened date %v", first.OpenedDate)
	}
	if got := len(first.Events.Screening[0].Dates); got != 1 {
		t.Errorf("Expected duplicate dates to collapse, got %d", got)
	}
	if first.Events.Screening[0].Left == nil || first.Events.Screening[0].Left.EquipmentMakeModel != "HOLOGIC" {
		t.Errorf("Expected left breast screening data")
	}
	if status, ok := first.Status(); !ok || status != EpisodeStatusNormalAssessment {
		t.Errorf("Expected NA, got %q", status)
	}

	second := c.Episodes[1]
	if second.HasEvents() {
		t.Errorf("Expected absent events")
	}
	if second.DiagnosisDate == nil || !second.DiagnosisDate.Equal(date(2011, 6, 1)) {
		t.Errorf("Unexpected diagnosis date %v", second.DiagnosisDate)
	}
}

func TestDecodeClientsValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Missing client id", `{"clients":[{"episodes":[]}]}`},
		{"Unknown episode type", `{"clients":[{"id":"c","episodes":[{"id":"1","type":"ZZ"}]}]}`},
		{"Bad opened date", `{"clients":[{"id":"c","episodes":[{"id":"1","opened_date":"01/01/2000"}]}]}`},
		{"Unknown side opinion", `{"clients":[{"id":"c","episodes":[{"id":"1","events":{"surgery":{"left_opinion":"OX"}}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClients(strings.NewReader(tt.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := DecodeClients(strings.NewReader("{")); err == nil {
		t.Errorf("Expected decode error for truncated JSON")
	}
}

func TestNewDocumentRoundTrip(t *testing.T) {
	clients, err := DecodeClients(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(NewDocument(clients)); err != nil {
		t.Fatalf("Unexpected encode error: %v", err)
	}
	again, err := DecodeClients(&buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if again[0].Episodes[1].Type != EpisodeTypeIntervalCase {
		t.Errorf("Expected interval case to survive")
	}
	if again[0].Episodes[0].Events.Assessment.LeftOpinion != SideOpinionNormal {
		t.Errorf("Expected assessment opinion to survive")
	}
}
