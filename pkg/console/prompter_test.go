package console

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/maitred/pkg/reserve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return &Prompter{
		in:  bufio.NewReader(strings.NewReader(input)),
		out: &out,
	}, &out
}

func promptSlots() reserve.SlotSet {
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	return reserve.SlotSet{
		{Date: day, TimeOfDay: "6:00 PM", Seating: "Bar"},
		{Date: day, TimeOfDay: "7:00 PM", Seating: "Dining Room"},
	}
}

func TestCredentialsBlankEmailMeansManualLogin(t *testing.T) {
	p, _ := scriptedPrompter("\n")
	_, ok, err := p.Credentials()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialsReadsEmailAndPassword(t *testing.T) {
	// Not a terminal under test, so the password falls back to a line read
	p, _ := scriptedPrompter("diner@example.com\nhunter2\n")
	creds, ok, err := p.Credentials()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "diner@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestRestaurantURLRejectsUntilValid(t *testing.T) {
	p, out := scriptedPrompter("https://example.com/nope\nhttps://resy.com/cities/ny/venues/example\n")
	got, err := p.RestaurantURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://resy.com/cities/ny/venues/example", got)
	assert.Contains(t, out.String(), "doesn't look like a Resy restaurant URL")
}

func TestRestaurantURLAcceptsDefaultOnBlankLine(t *testing.T) {
	p, _ := scriptedPrompter("\n")
	got, err := p.RestaurantURL("https://resy.com/venues/example")
	require.NoError(t, err)
	assert.Equal(t, "https://resy.com/venues/example", got)
}

func TestDaysRange(t *testing.T) {
	t.Run("blank line takes the default", func(t *testing.T) {
		p, _ := scriptedPrompter("\n")
		days, err := p.DaysRange(7)
		require.NoError(t, err)
		assert.Equal(t, 7, days)
	})

	t.Run("out of range values are rejected", func(t *testing.T) {
		p, out := scriptedPrompter("0\n45\nabc\n14\n")
		days, err := p.DaysRange(7)
		require.NoError(t, err)
		assert.Equal(t, 14, days)
		assert.Contains(t, out.String(), "between 1 and 30")
	})
}

func TestPick(t *testing.T) {
	t.Run("valid choice", func(t *testing.T) {
		p, out := scriptedPrompter("2\n")
		slot, ok, err := p.Pick(promptSlots())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "7:00 PM", slot.TimeOfDay)
		assert.Contains(t, out.String(), "1.")
		assert.Contains(t, out.String(), "2.")
	})

	t.Run("q cancels", func(t *testing.T) {
		p, _ := scriptedPrompter("q\n")
		_, ok, err := p.Pick(promptSlots())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid entries re-prompt", func(t *testing.T) {
		p, _ := scriptedPrompter("9\nx\n1\n")
		slot, ok, err := p.Pick(promptSlots())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "6:00 PM", slot.TimeOfDay)
	})
}

func TestConfirmBooking(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false}, // default is no
		{"maybe\ny\n", true},
	}
	for _, tt := range tests {
		p, _ := scriptedPrompter(tt.input)
		got, err := p.ConfirmBooking(reserve.Slot{TimeOfDay: "7:00 PM"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
