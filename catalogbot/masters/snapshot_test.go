package masters_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohye/catalogbot/catalogbot/masters"
	"github.com/gohye/catalogbot/catalogbot/masters/mastertest"
)

func TestSnapshotAddJSON(t *testing.T) {
	s := masters.NewSnapshot()
	require.NoError(t, s.AddJSON(masters.KindSongs, strings.NewReader(`[
		{"id": 1, "name": "Cyber Cyber", "unit_id": 1, "start_at": "2023-01-01T00:00:00Z"},
		null,
		{"id": 2, "name": "Photon Melodies", "unit_id": 3}
	]`)))
	require.NoError(t, s.AddJSON(masters.KindCharts, strings.NewReader(`[
		{"id": 14, "song_id": 1, "difficulty": 4, "level": 14.5}
	]`)))
	require.NoError(t, s.Link())

	assert.Len(t, s.Songs, 2)
	assert.Equal(t, 2023, s.Songs[1].StartAt.Year())
	require.Contains(t, s.Songs[1].Charts, masters.DifficultyExpert)
	assert.Equal(t, 14.5, s.Songs[1].Charts[masters.DifficultyExpert].Level)
	assert.Same(t, s.Songs[1], s.Charts[14].Song)
}

func TestSnapshotAddErrors(t *testing.T) {
	s := masters.NewSnapshot()
	assert.Error(t, s.AddJSON("weapons", strings.NewReader(`[]`)))
	assert.Error(t, s.AddJSON(masters.KindSongs, strings.NewReader(`{`)))
	assert.Error(t, s.AddJSON(masters.KindSongs, strings.NewReader(`[{"id": 1}, {"id": 1}]`)))

	failing := masters.Decoder(func(any) error { return errors.New("cursor closed") })
	err := s.Add(masters.KindCards, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cards")
}

func TestSnapshotLinkRejectsDanglingReferences(t *testing.T) {
	s := masters.NewSnapshot()
	s.Charts[11] = &masters.Chart{ID: 11, SongID: 99, Difficulty: 1}
	assert.Error(t, s.Link())

	s = masters.NewSnapshot()
	s.Events[1] = &masters.Event{ID: 1, CardIDs: []int{5}}
	assert.Error(t, s.Link())
}

func TestSnapshotRelations(t *testing.T) {
	s := mastertest.Snapshot()

	card := s.Cards[103]
	require.NotNil(t, card.Event)
	assert.Equal(t, 2, card.Event.ID)
	require.Len(t, card.Gachas, 1)
	assert.Equal(t, 2, card.Gachas[0].ID)
	assert.Equal(t, 3, card.UnitID())
	assert.Equal(t, 8100, card.Power())

	event := s.Events[2]
	assert.Len(t, event.Cards, 2)
	require.Len(t, event.Gachas, 1)
	assert.Same(t, event, event.Gachas[0].Event)

	require.NoError(t, s.Link(), "linking twice is idempotent")
	assert.Len(t, s.Events[2].Cards, 2)
	assert.Len(t, s.Cards[103].Gachas, 1)
}

func TestSnapshotCurrentEvent(t *testing.T) {
	s := mastertest.Snapshot()

	current, ok := s.CurrentEvent(mastertest.Epoch)
	require.True(t, ok)
	assert.Equal(t, 2, current.ID)

	current, ok = s.CurrentEvent(mastertest.Epoch.AddDate(0, 1, 0))
	require.True(t, ok)
	assert.Equal(t, 3, current.ID)

	_, ok = s.CurrentEvent(mastertest.Epoch.AddDate(-5, 0, 0))
	assert.False(t, ok)
}

func TestSnapshotActiveGachas(t *testing.T) {
	s := mastertest.Snapshot()
	active := s.ActiveGachas(mastertest.Epoch)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].ID)
}

func TestSnapshotCounts(t *testing.T) {
	counts := mastertest.Snapshot().Counts()
	assert.Equal(t, 4, counts[masters.KindSongs])
	assert.Equal(t, 16, counts[masters.KindCharts])
	assert.Equal(t, 5, counts[masters.KindCards])
}
