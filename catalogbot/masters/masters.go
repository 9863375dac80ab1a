// Package masters holds the typed game master records one server snapshot is made of.
package masters

import "time"

// Difficulties of a chart, in ascending order.
const (
	DifficultyEasy   = 1
	DifficultyNormal = 2
	DifficultyHard   = 3
	DifficultyExpert = 4
)

type Song struct {
	ID         int       `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Artist     string    `json:"artist" bson:"artist"`
	Lyricist   string    `json:"lyricist" bson:"lyricist"`
	Composer   string    `json:"composer" bson:"composer"`
	Arranger   string    `json:"arranger" bson:"arranger"`
	UnitID     int       `json:"unit_id" bson:"unit_id"`
	Category   string    `json:"category" bson:"category"`
	BPM        float64   `json:"bpm" bson:"bpm"`
	Duration   float64   `json:"duration" bson:"duration"`
	StartAt    time.Time `json:"start_at" bson:"start_at"`
	Hidden     bool      `json:"hidden" bson:"hidden"`
	JacketFile string    `json:"jacket_file" bson:"jacket_file"`

	Charts map[int]*Chart `json:"-" bson:"-"`
}

func (s *Song) EntityID() int { return s.ID }

type Chart struct {
	ID         int     `json:"id" bson:"_id"`
	SongID     int     `json:"song_id" bson:"song_id"`
	Difficulty int     `json:"difficulty" bson:"difficulty"`
	Level      float64 `json:"level" bson:"level"`
	Notes      int     `json:"notes" bson:"notes"`
	Designer   string  `json:"designer" bson:"designer"`

	Song *Song `json:"-" bson:"-"`
}

func (c *Chart) EntityID() int { return c.ID }

type Card struct {
	ID          int       `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	CharacterID int       `json:"character_id" bson:"character_id"`
	Rarity      int       `json:"rarity" bson:"rarity"`
	Attribute   string    `json:"attribute" bson:"attribute"`
	Heart       int       `json:"heart" bson:"heart"`
	Technique   int       `json:"technique" bson:"technique"`
	Physical    int       `json:"physical" bson:"physical"`
	SkillName   string    `json:"skill_name" bson:"skill_name"`
	SkillScore  float64   `json:"skill_score" bson:"skill_score"`
	StartAt     time.Time `json:"start_at" bson:"start_at"`
	Limited     bool      `json:"limited" bson:"limited"`
	AssetFile   string    `json:"asset_file" bson:"asset_file"`

	Event  *Event   `json:"-" bson:"-"`
	Gachas []*Gacha `json:"-" bson:"-"`
}

func (c *Card) EntityID() int { return c.ID }

// UnitID derives the unit from the character id, whose tens digit is the unit.
func (c *Card) UnitID() int { return c.CharacterID / 10 }

// Power is the total of the three stats.
func (c *Card) Power() int { return c.Heart + c.Technique + c.Physical }

type Event struct {
	ID              int       `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Type            string    `json:"type" bson:"type"`
	StartAt         time.Time `json:"start_at" bson:"start_at"`
	EndAt           time.Time `json:"end_at" bson:"end_at"`
	BonusCharacters []int     `json:"bonus_characters" bson:"bonus_characters"`
	BonusAttribute  string    `json:"bonus_attribute" bson:"bonus_attribute"`
	CardIDs         []int     `json:"card_ids" bson:"card_ids"`
	BannerFile      string    `json:"banner_file" bson:"banner_file"`

	Cards  []*Card  `json:"-" bson:"-"`
	Gachas []*Gacha `json:"-" bson:"-"`
}

func (e *Event) EntityID() int { return e.ID }

type Gacha struct {
	ID         int       `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Type       string    `json:"type" bson:"type"`
	StartAt    time.Time `json:"start_at" bson:"start_at"`
	EndAt      time.Time `json:"end_at" bson:"end_at"`
	EventID    int       `json:"event_id" bson:"event_id"`
	PickUpIDs  []int     `json:"pick_up_ids" bson:"pick_up_ids"`
	BannerFile string    `json:"banner_file" bson:"banner_file"`

	Event   *Event  `json:"-" bson:"-"`
	PickUps []*Card `json:"-" bson:"-"`
}

func (g *Gacha) EntityID() int { return g.ID }

type Stamp struct {
	ID          int    `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	CharacterID int    `json:"character_id" bson:"character_id"`
	Description string `json:"description" bson:"description"`
	AssetFile   string `json:"asset_file" bson:"asset_file"`
}

func (s *Stamp) EntityID() int { return s.ID }

type LoginBonus struct {
	ID        int       `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	StartAt   time.Time `json:"start_at" bson:"start_at"`
	EndAt     time.Time `json:"end_at" bson:"end_at"`
	Rewards   []string  `json:"rewards" bson:"rewards"`
	AssetFile string    `json:"asset_file" bson:"asset_file"`
}

func (l *LoginBonus) EntityID() int { return l.ID }

type Comic struct {
	ID           int       `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	CharacterIDs []int     `json:"character_ids" bson:"character_ids"`
	StartAt      time.Time `json:"start_at" bson:"start_at"`
	AssetFile    string    `json:"asset_file" bson:"asset_file"`
}

func (c *Comic) EntityID() int { return c.ID }
