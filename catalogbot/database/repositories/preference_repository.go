package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/gohye/catalogbot/catalogbot/database/models"
	"github.com/gohye/catalogbot/catalogbot/preferences"
)

type preferenceRepository struct {
	db *bun.DB
}

func NewPreferenceRepository(db *bun.DB) preferences.Store {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, scope models.Scope, id string) (*models.Preference, error) {
	pref := new(models.Preference)
	err := r.db.NewSelect().
		Model(pref).
		Where("scope = ?", scope).
		Where("scope_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, preferences.ErrNotFound
		}
		slog.Error("Database error when getting preference",
			slog.String("type", "db"),
			slog.String("operation", "GetPreference"),
			slog.String("scope", string(scope)),
			slog.String("scope_id", id),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to get %s preference: %w", scope, err)
	}
	return pref, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	pref.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(pref).
		On("CONFLICT (scope, scope_id) DO UPDATE").
		Set("server = EXCLUDED.server").
		Set("timezone = EXCLUDED.timezone").
		Set("language = EXCLUDED.language").
		Set("allow_unreleased = EXCLUDED.allow_unreleased").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save %s preference: %w", pref.Scope, err)
	}
	return nil
}

func (r *preferenceRepository) Delete(ctx context.Context, scope models.Scope, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Preference)(nil)).
		Where("scope = ?", scope).
		Where("scope_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s preference: %w", scope, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return preferences.ErrNotFound
	}
	return nil
}
