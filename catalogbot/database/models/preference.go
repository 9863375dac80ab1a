package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Scope is the Discord entity a preference row belongs to.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeChannel Scope = "channel"
	ScopeGuild   Scope = "guild"
)

// Preference holds the query defaults of one scope. Nil fields inherit from the next scope.
type Preference struct {
	bun.BaseModel `bun:"table:preferences,alias:p"`

	Scope   Scope  `bun:"scope,pk"`
	ScopeID string `bun:"scope_id,pk"`

	Server          *string `bun:"server"`
	Timezone        *string `bun:"timezone"`
	Language        *string `bun:"language"`
	AllowUnreleased *bool   `bun:"allow_unreleased"`

	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Empty reports whether every field is unset.
func (p *Preference) Empty() bool {
	return p.Server == nil && p.Timezone == nil && p.Language == nil && p.AllowUnreleased == nil
}
