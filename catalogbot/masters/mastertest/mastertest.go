// Package mastertest builds small linked snapshots for tests.
package mastertest

import (
	"time"

	"github.com/gohye/catalogbot/catalogbot/masters"
)

// Epoch is the reference "now" of the fixture: event 2 is running, event 3 is announced.
var Epoch = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return Epoch.AddDate(0, 0, offset)
}

// Snapshot returns a linked fixture snapshot.
func Snapshot() *masters.Snapshot {
	s := masters.NewSnapshot()

	for _, song := range []*masters.Song{
		{ID: 1, Name: "Cyber Cyber", UnitID: 1, Category: "original", BPM: 180, Duration: 120, StartAt: day(-400)},
		{ID: 2, Name: "Photon Melodies", UnitID: 3, Category: "original", BPM: 150, Duration: 115, StartAt: day(-300)},
		{ID: 3, Name: "Peaky Peaky", UnitID: 2, Category: "original", BPM: 200, Duration: 130, StartAt: day(-200)},
		{ID: 4, Name: "Unreleased Groove", UnitID: 5, Category: "original", BPM: 170, Duration: 125, StartAt: day(30)},
	} {
		s.Songs[song.ID] = song
	}

	levels := map[int][4]float64{
		1: {5, 9, 12, 14},
		2: {4, 8, 11, 14.5},
		3: {6, 10, 13, 15},
		4: {5, 9, 12, 13},
	}
	for songID, ls := range levels {
		for i, level := range ls {
			difficulty := i + 1
			id := songID*10 + difficulty
			s.Charts[id] = &masters.Chart{ID: id, SongID: songID, Difficulty: difficulty, Level: level, Notes: 200 * difficulty}
		}
	}

	for _, card := range []*masters.Card{
		{ID: 101, Name: "Rinku First", CharacterID: 11, Rarity: 4, Attribute: "street", Heart: 3000, Technique: 2500, Physical: 2000, StartAt: day(-400)},
		{ID: 102, Name: "Maho Beat", CharacterID: 12, Rarity: 3, Attribute: "party", Heart: 2500, Technique: 2000, Physical: 1500, StartAt: day(-300)},
		{ID: 103, Name: "Saki Light", CharacterID: 31, Rarity: 4, Attribute: "elegant", Heart: 3200, Technique: 2800, Physical: 2100, StartAt: day(-10), Limited: true},
		{ID: 104, Name: "Kyoko Riot", CharacterID: 21, Rarity: 4, Attribute: "cool", Heart: 2900, Technique: 3100, Physical: 2200, StartAt: day(-10)},
		{ID: 105, Name: "Noa Future", CharacterID: 34, Rarity: 4, Attribute: "cute", Heart: 3300, Technique: 2600, Physical: 2300, StartAt: day(20)},
	} {
		s.Cards[card.ID] = card
	}

	for _, event := range []*masters.Event{
		{ID: 1, Name: "Opening Party", Type: "poker", StartAt: day(-40), EndAt: day(-33), BonusCharacters: []int{11, 12}, CardIDs: []int{102}},
		{ID: 2, Name: "Photon Night", Type: "raid", StartAt: day(-10), EndAt: day(-3), BonusCharacters: []int{31}, BonusAttribute: "elegant", CardIDs: []int{103, 104}},
		{ID: 3, Name: "Future Festival", Type: "bingo", StartAt: day(20), EndAt: day(27), CardIDs: []int{105}},
	} {
		s.Events[event.ID] = event
	}

	for _, gacha := range []*masters.Gacha{
		{ID: 1, Name: "Welcome Gacha", Type: "normal", StartAt: day(-400), PickUpIDs: []int{101}},
		{ID: 2, Name: "Photon Night Gacha", Type: "limited", StartAt: day(-10), EndAt: day(-3), EventID: 2, PickUpIDs: []int{103}},
		{ID: 3, Name: "Future Gacha", Type: "normal", StartAt: day(20), EventID: 3, PickUpIDs: []int{105}},
	} {
		s.Gachas[gacha.ID] = gacha
	}

	for _, stamp := range []*masters.Stamp{
		{ID: 1, Name: "Rinku Thumbs Up", CharacterID: 11},
		{ID: 2, Name: "Saki Bow", CharacterID: 31},
	} {
		s.Stamps[stamp.ID] = stamp
	}

	s.LoginBonuses[1] = &masters.LoginBonus{ID: 1, Title: "Anniversary Login", StartAt: day(-5), EndAt: day(5), Rewards: []string{"gems x100"}}
	s.Comics[1] = &masters.Comic{ID: 1, Title: "Lunch Break", CharacterIDs: []int{11, 12}, StartAt: day(-100)}

	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}
