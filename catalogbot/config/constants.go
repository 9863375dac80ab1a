package config

import "time"

// Application-wide constants organized by domain

// UI and Display Constants
const (
	// Pagination
	ListPageSize      = 15
	SelectWindowSize  = 25
	AutocompleteLimit = 25

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	EmbedDefaultColor = 0x2B2D31

	// Unit Colors
	HappyAroundColor  = 0xF6A5C0
	PeakyPKeyColor    = 0xE8443A
	PhotonMaidenColor = 0x2F7DE1
	Merm4idColor      = 0x3EC6B6
	RondoColor        = 0x8F4FD8
	LyricalLilyColor  = 0xF2C94C
)

// UnitColors maps unit ids to their embed color.
var UnitColors = map[int]int{
	1: HappyAroundColor,
	2: PeakyPKeyColor,
	3: PhotonMaidenColor,
	4: Merm4idColor,
	5: RondoColor,
	6: LyricalLilyColor,
}

// UnitColor falls back to the default embed color for unknown units.
func UnitColor(unit int) int {
	if c, ok := UnitColors[unit]; ok {
		return c
	}
	return EmbedDefaultColor
}

// Timeouts
const (
	DefaultQueryTimeout     = 30 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	SlowCommandThreshold    = 2 * time.Second
	ReloadTimeout           = 5 * time.Minute
	AssetLookupTimeout      = 500 * time.Millisecond
	AutocompleteTimeout     = 2 * time.Second
)

// Cache settings
const (
	SessionIdleTimeout     = 10 * time.Minute
	SessionCleanupInterval = time.Minute
	AssetURLCacheSize      = 10000
)
