package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/database/models"
	"github.com/gohye/catalogbot/catalogbot/preferences/mock"
)

var (
	user    = snowflake.ID(100)
	channel = snowflake.ID(200)
	guild   = snowflake.ID(300)
	fixed   = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func defaults() Defaults {
	return Defaults{
		Server:   catalog.ServerJP,
		Servers:  []catalog.Server{catalog.ServerJP, catalog.ServerEN},
		Language: "en",
	}
}

func newResolver(t *testing.T) (*Resolver, *mock.MockStore) {
	t.Helper()
	store := mock.NewMockStore(gomock.NewController(t))
	r := NewResolver(store, defaults())
	r.now = func() time.Time { return fixed }
	return r, store
}

func TestContextWithoutStore(t *testing.T) {
	r := NewResolver(nil, defaults())
	ctx, err := r.Context(context.Background(), Target{User: user})
	require.NoError(t, err)
	assert.Equal(t, catalog.ServerJP, ctx.Server)
	assert.Equal(t, time.UTC, ctx.Location)
	assert.Equal(t, "en", ctx.Language)
	assert.False(t, ctx.AllowUnreleased)
}

func TestContextResolutionOrder(t *testing.T) {
	r, store := newResolver(t)
	store.EXPECT().Get(gomock.Any(), models.ScopeUser, user.String()).
		Return(&models.Preference{Server: ptr("en")}, nil)
	store.EXPECT().Get(gomock.Any(), models.ScopeChannel, channel.String()).
		Return(&models.Preference{Server: ptr("jp"), Timezone: ptr("Asia/Tokyo")}, nil)
	store.EXPECT().Get(gomock.Any(), models.ScopeGuild, guild.String()).
		Return(&models.Preference{Timezone: ptr("Europe/Paris"), AllowUnreleased: ptr(true)}, nil)

	ctx, err := r.Context(context.Background(), Target{User: user, Channel: channel, Guild: guild})
	require.NoError(t, err)
	assert.Equal(t, catalog.ServerEN, ctx.Server, "user wins over channel")
	assert.Equal(t, "Asia/Tokyo", ctx.Location.String(), "channel wins over guild")
	assert.True(t, ctx.AllowUnreleased)
	assert.Equal(t, "en", ctx.Language)
	assert.Equal(t, fixed, ctx.Now)
}

func TestContextSkipsMissingScopesAndUnloadedServers(t *testing.T) {
	r, store := newResolver(t)
	store.EXPECT().Get(gomock.Any(), models.ScopeUser, user.String()).Return(nil, ErrNotFound)
	store.EXPECT().Get(gomock.Any(), models.ScopeGuild, guild.String()).
		Return(&models.Preference{Server: ptr("kr")}, nil)

	ctx, err := r.Context(context.Background(), Target{User: user, Guild: guild})
	require.NoError(t, err)
	assert.Equal(t, catalog.ServerJP, ctx.Server)
}

func TestContextStoreFailure(t *testing.T) {
	r, store := newResolver(t)
	boom := errors.New("connection reset")
	store.EXPECT().Get(gomock.Any(), models.ScopeUser, user.String()).Return(nil, boom)

	_, err := r.Context(context.Background(), Target{User: user})
	assert.ErrorIs(t, err, boom)
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		check func(t *testing.T, p *models.Preference)
	}{
		{"server", FieldServer, "EN", func(t *testing.T, p *models.Preference) {
			assert.Equal(t, "en", *p.Server)
		}},
		{"timezone", FieldTimezone, "Asia/Tokyo", func(t *testing.T, p *models.Preference) {
			assert.Equal(t, "Asia/Tokyo", *p.Timezone)
		}},
		{"language", FieldLanguage, "JA", func(t *testing.T, p *models.Preference) {
			assert.Equal(t, "ja", *p.Language)
		}},
		{"unreleased", FieldUnreleased, "true", func(t *testing.T, p *models.Preference) {
			assert.True(t, *p.AllowUnreleased)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newResolver(t)
			store.EXPECT().Get(gomock.Any(), models.ScopeUser, user.String()).Return(nil, ErrNotFound)
			store.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

			pref, err := r.Set(context.Background(), models.ScopeUser, user, tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, models.ScopeUser, pref.Scope)
			assert.Equal(t, user.String(), pref.ScopeID)
			tt.check(t, pref)
		})
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{FieldServer, "xx"},
		{FieldServer, "kr"},
		{FieldTimezone, "Mars/Olympus"},
		{FieldUnreleased, "maybe"},
		{"color", "red"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			r, store := newResolver(t)
			store.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, ErrNotFound)

			_, err := r.Set(context.Background(), models.ScopeGuild, guild, tt.field, tt.value)
			assert.Error(t, err)
			if tt.field != "color" {
				assert.ErrorIs(t, err, ErrInvalidValue)
			}
		})
	}
}

func TestSetClearingLastFieldDeletesRow(t *testing.T) {
	r, store := newResolver(t)
	store.EXPECT().Get(gomock.Any(), models.ScopeChannel, channel.String()).
		Return(&models.Preference{Scope: models.ScopeChannel, ScopeID: channel.String(), Server: ptr("en")}, nil)
	store.EXPECT().Delete(gomock.Any(), models.ScopeChannel, channel.String()).Return(nil)

	pref, err := r.Set(context.Background(), models.ScopeChannel, channel, FieldServer, "")
	require.NoError(t, err)
	assert.True(t, pref.Empty())
}

func TestWithoutStore(t *testing.T) {
	r := NewResolver(nil, defaults())
	_, err := r.Set(context.Background(), models.ScopeUser, user, FieldServer, "en")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = r.Get(context.Background(), models.ScopeUser, user)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Clear(context.Background(), models.ScopeUser, user), ErrNotFound)
}
