package masters

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"time"
)

// Master file kinds, in load order.
const (
	KindSongs        = "songs"
	KindCharts       = "charts"
	KindCards        = "cards"
	KindEvents       = "events"
	KindGachas       = "gachas"
	KindStamps       = "stamps"
	KindLoginBonuses = "login_bonuses"
	KindComics       = "comics"
)

var Kinds = []string{KindSongs, KindCharts, KindCards, KindEvents, KindGachas, KindStamps, KindLoginBonuses, KindComics}

// Snapshot is the complete master data of one server.
type Snapshot struct {
	Songs        map[int]*Song
	Charts       map[int]*Chart
	Cards        map[int]*Card
	Events       map[int]*Event
	Gachas       map[int]*Gacha
	Stamps       map[int]*Stamp
	LoginBonuses map[int]*LoginBonus
	Comics       map[int]*Comic
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Songs:        map[int]*Song{},
		Charts:       map[int]*Chart{},
		Cards:        map[int]*Card{},
		Events:       map[int]*Event{},
		Gachas:       map[int]*Gacha{},
		Stamps:       map[int]*Stamp{},
		LoginBonuses: map[int]*LoginBonus{},
		Comics:       map[int]*Comic{},
	}
}

// Decoder fills a pointer to a slice of records, like json.Decoder.Decode or
// mongo.Cursor.All do.
type Decoder func(v any) error

// Add decodes the records of kind into the snapshot.
func (s *Snapshot) Add(kind string, decode Decoder) error {
	var err error
	switch kind {
	case KindSongs:
		err = addAll(decode, s.Songs)
	case KindCharts:
		err = addAll(decode, s.Charts)
	case KindCards:
		err = addAll(decode, s.Cards)
	case KindEvents:
		err = addAll(decode, s.Events)
	case KindGachas:
		err = addAll(decode, s.Gachas)
	case KindStamps:
		err = addAll(decode, s.Stamps)
	case KindLoginBonuses:
		err = addAll(decode, s.LoginBonuses)
	case KindComics:
		err = addAll(decode, s.Comics)
	default:
		return fmt.Errorf("unknown master kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return nil
}

// AddJSON decodes a JSON array of kind records from r.
func (s *Snapshot) AddJSON(kind string, r io.Reader) error {
	return s.Add(kind, json.NewDecoder(r).Decode)
}

type identified interface {
	comparable
	EntityID() int
}

func addAll[T identified](decode Decoder, into map[int]T) error {
	var records []T
	if err := decode(&records); err != nil {
		return err
	}
	var zero T
	for _, r := range records {
		if r == zero {
			continue
		}
		if _, ok := into[r.EntityID()]; ok {
			return fmt.Errorf("duplicate id %d", r.EntityID())
		}
		into[r.EntityID()] = r
	}
	return nil
}

// Link resolves the relations between records. Dangling references are reported.
func (s *Snapshot) Link() error {
	for _, song := range s.Songs {
		song.Charts = map[int]*Chart{}
	}
	for _, chart := range s.Charts {
		song, ok := s.Songs[chart.SongID]
		if !ok {
			return fmt.Errorf("chart %d references missing song %d", chart.ID, chart.SongID)
		}
		chart.Song = song
		song.Charts[chart.Difficulty] = chart
	}

	for _, card := range s.Cards {
		card.Event = nil
		card.Gachas = nil
	}
	for _, event := range s.Events {
		event.Cards = event.Cards[:0]
		event.Gachas = nil
		for _, id := range event.CardIDs {
			card, ok := s.Cards[id]
			if !ok {
				return fmt.Errorf("event %d references missing card %d", event.ID, id)
			}
			card.Event = event
			event.Cards = append(event.Cards, card)
		}
	}
	for _, gacha := range s.Gachas {
		gacha.PickUps = gacha.PickUps[:0]
		if event, ok := s.Events[gacha.EventID]; ok {
			gacha.Event = event
			event.Gachas = append(event.Gachas, gacha)
		}
		for _, id := range gacha.PickUpIDs {
			card, ok := s.Cards[id]
			if !ok {
				return fmt.Errorf("gacha %d references missing card %d", gacha.ID, id)
			}
			card.Gachas = append(card.Gachas, gacha)
			gacha.PickUps = append(gacha.PickUps, card)
		}
	}
	for _, card := range s.Cards {
		sort.Slice(card.Gachas, func(i, j int) bool { return card.Gachas[i].ID < card.Gachas[j].ID })
	}
	for _, event := range s.Events {
		sort.Slice(event.Gachas, func(i, j int) bool { return event.Gachas[i].ID < event.Gachas[j].ID })
	}
	return nil
}

// CurrentEvent returns the latest event that has started at now.
func (s *Snapshot) CurrentEvent(now time.Time) (*Event, bool) {
	var current *Event
	for _, e := range s.Events {
		if e.StartAt.After(now) {
			continue
		}
		if current == nil || e.StartAt.After(current.StartAt) ||
			(e.StartAt.Equal(current.StartAt) && e.ID > current.ID) {
			current = e
		}
	}
	return current, current != nil
}

// ActiveGachas returns the gachas running at now, in id order.
func (s *Snapshot) ActiveGachas(now time.Time) []*Gacha {
	var active []*Gacha
	for _, g := range s.Gachas {
		if !g.StartAt.After(now) && (g.EndAt.IsZero() || g.EndAt.After(now)) {
			active = append(active, g)
		}
	}
	slices.SortFunc(active, func(a, b *Gacha) int { return a.ID - b.ID })
	return active
}

// Counts reports the number of records per kind, for logs.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		KindSongs:        len(s.Songs),
		KindCharts:       len(s.Charts),
		KindCards:        len(s.Cards),
		KindEvents:       len(s.Events),
		KindGachas:       len(s.Gachas),
		KindStamps:       len(s.Stamps),
		KindLoginBonuses: len(s.LoginBonuses),
		KindComics:       len(s.Comics),
	}
}
