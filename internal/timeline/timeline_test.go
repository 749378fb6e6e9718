package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screening-outcome-classifier/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func screened(id string, dates ...time.Time) *domain.Episode {
	return &domain.Episode{
		ID:     id,
		Events: &domain.Events{Screening: []domain.Screening{{BaseEvent: domain.BaseEvent{Dates: dates}}}},
	}
}

func TestCanonicalDate(t *testing.T) {
	expected := day(2000, 1, 1)
	before := expected.AddDate(0, 0, -1)

	tests := []struct {
		name string
		ep   *domain.Episode
	}{
		{
			name: "event date wins over opened date",
			ep: &domain.Episode{
				ID:         "1",
				Events:     &domain.Events{Screening: []domain.Screening{{BaseEvent: domain.BaseEvent{Dates: []time.Time{expected}}}}},
				OpenedDate: &before,
			},
		},
		{
			name: "opened date without event dates",
			ep: &domain.Episode{
				ID:         "1",
				Events:     &domain.Events{Screening: []domain.Screening{{}}},
				OpenedDate: &expected,
			},
		},
		{
			name: "interval case uses diagnosis date",
			ep: &domain.Episode{
				ID:            "1",
				Type:          domain.EpisodeTypeIntervalCase,
				Events:        &domain.Events{Screening: []domain.Screening{{}}},
				OpenedDate:    &before,
				DiagnosisDate: &expected,
			},
		},
		{
			name: "multiple screening dates",
			ep:   screened("1", day(2000, 2, 1), expected),
		},
		{
			name: "earliest across event kinds",
			ep: &domain.Episode{
				ID: "1",
				Events: &domain.Events{
					Screening: []domain.Screening{{BaseEvent: domain.BaseEvent{Dates: []time.Time{expected.AddDate(0, 0, 1)}}}},
					Surgery:   &domain.BaseEvent{Dates: []time.Time{expected}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalDate(tt.ep)
			require.NoError(t, err)
			assert.True(t, expected.Equal(got), "expected %s, got %s", expected, got)
		})
	}
}

func TestCanonicalDateErrors(t *testing.T) {
	opened := day(2000, 1, 1)

	tests := []struct {
		name string
		ep   *domain.Episode
	}{
		{
			name: "no dates at all",
			ep:   &domain.Episode{ID: "1", Events: &domain.Events{Screening: []domain.Screening{{}}}},
		},
		{
			name: "interval case with only an opened date",
			ep: &domain.Episode{
				ID:         "1",
				Type:       domain.EpisodeTypeIntervalCase,
				Events:     &domain.Events{Screening: []domain.Screening{{}}},
				OpenedDate: &opened,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalDate(tt.ep)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrNoCanonicalDate))

			var dateErr *domain.DateError
			require.True(t, errors.As(err, &dateErr))
			assert.Equal(t, "1", dateErr.EpisodeID)
		})
	}
}

func TestNext(t *testing.T) {
	episodes := []*domain.Episode{
		screened("1", day(2000, 2, 1)),
		screened("2", day(2000, 1, 1)),
	}

	next, err := Next(episodes[0], episodes)
	require.NoError(t, err)
	assert.Nil(t, next)

	next, err = Next(episodes[1], episodes)
	require.NoError(t, err)
	assert.Same(t, episodes[0], next)

	stranger := screened("3", day(2000, 1, 15))
	next, err = Next(stranger, episodes)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestOrder(t *testing.T) {
	a := screened("a", day(2001, 1, 1))
	b := screened("b", day(2000, 1, 1))
	c := screened("c", day(2000, 1, 1))
	input := []*domain.Episode{a, b, c}

	ordered, err := Order(input)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Episode{b, c, a}, ordered)
	assert.Same(t, a, input[0], "input must not be reordered")

	again, err := Order(ordered)
	require.NoError(t, err)
	assert.Equal(t, ordered, again)

	undated := &domain.Episode{ID: "x"}
	_, err = Order(append(input, undated))
	assert.ErrorIs(t, err, domain.ErrNoCanonicalDate)
}

func TestSubsequentAndPreceding(t *testing.T) {
	e1 := screened("1", day(2000, 1, 1))
	e2 := screened("2", day(2001, 1, 1))
	e3 := screened("3", day(2002, 1, 1))
	all := []*domain.Episode{e3, e1, e2}

	after, err := Subsequent(e1, all)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Episode{e2, e3}, after)

	before, err := Preceding(e3, all)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Episode{e1, e2}, before)

	after, err = Subsequent(e3, all)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestWithinWindow(t *testing.T) {
	e1 := screened("1", day(2000, 1, 1))
	e2 := screened("2", day(2000, 3, 1))

	tests := []struct {
		months   int
		expected bool
	}{
		{2, true},
		{1, false},
	}

	for _, tt := range tests {
		got, err := WithinWindow(e1, e2, tt.months)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "months=%d", tt.months)
	}

	// e2 precedes e1: negative gaps are always within the window.
	got, err := WithinWindow(e2, e1, 0)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestWithinWindowMonotonic(t *testing.T) {
	e1 := screened("1", day(2000, 1, 1))
	e2 := screened("2", day(2003, 4, 17))

	seen := false
	for months := 0; months <= 60; months++ {
		got, err := WithinWindow(e1, e2, months)
		require.NoError(t, err)
		if seen {
			assert.True(t, got, "window must stay satisfied at %d months", months)
		}
		seen = seen || got
	}
	assert.True(t, seen)
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		expected int
	}{
		{"same day", day(2000, 1, 1), day(2000, 1, 1), 0},
		{"two months", day(2000, 1, 1), day(2000, 3, 1), 2},
		{"just over a year", day(2000, 1, 1), day(2001, 1, 2), 13},
		{"three years", day(2000, 1, 1), day(2003, 1, 1), 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthsBetween(screened("1", tt.from), screened("2", tt.to))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
