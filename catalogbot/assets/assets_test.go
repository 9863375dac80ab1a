package assets_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/assets/mock"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirSourceLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "jp", "songs.json"), `[{"id": 1, "name": "Cyber Cyber", "unit_id": 1}]`)
	writeFile(t, filepath.Join(root, "jp", "charts.json"), `[{"id": 14, "song_id": 1, "difficulty": 4, "level": 14}]`)

	source := assets.NewDirSource(root)
	snapshot, err := source.Load(context.Background(), catalog.ServerJP)
	require.NoError(t, err)
	assert.Len(t, snapshot.Songs, 1)
	assert.Empty(t, snapshot.Cards, "missing kinds load empty")
	assert.Same(t, snapshot.Songs[1], snapshot.Charts[14].Song)
}

func TestDirSourceErrors(t *testing.T) {
	root := t.TempDir()
	source := assets.NewDirSource(root)

	_, err := source.Load(context.Background(), catalog.ServerEN)
	assert.ErrorIs(t, err, assets.ErrServerMissing)

	writeFile(t, filepath.Join(root, "jp", "songs.json"), `[{"id": 1`)
	_, err = source.Load(context.Background(), catalog.ServerJP)
	assert.Error(t, err)

	writeFile(t, filepath.Join(root, "en", "charts.json"), `[{"id": 14, "song_id": 1}]`)
	_, err = source.Load(context.Background(), catalog.ServerEN)
	assert.Error(t, err, "dangling chart")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writeFile(t, filepath.Join(root, "tw", "songs.json"), `[]`)
	_, err = source.Load(ctx, catalog.ServerTW)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestURLResolverMemoizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockObjectChecker(ctrl)
	checker.EXPECT().Exists(gomock.Any(), "jp/cards/101.png").Return(true, nil).Times(1)
	checker.EXPECT().Exists(gomock.Any(), "jp/cards/999.png").Return(false, nil).Times(1)

	resolver := assets.NewURLResolver("https://cdn.example.com/root/", checker, 16)
	ctx := context.Background()

	assert.Equal(t, "https://cdn.example.com/root/jp/cards/101.png", resolver.URL(ctx, catalog.ServerJP, "cards", "101.png"))
	assert.Equal(t, "https://cdn.example.com/root/jp/cards/101.png", resolver.URL(ctx, catalog.ServerJP, "cards", "101.png"))
	assert.Equal(t, "", resolver.URL(ctx, catalog.ServerJP, "cards", "999.png"))
	assert.Equal(t, "", resolver.URL(ctx, catalog.ServerJP, "cards", "999.png"))
	assert.Equal(t, "", resolver.URL(ctx, catalog.ServerJP, "cards", ""))
	assert.Equal(t, 2, resolver.Len())
}

func TestURLResolverPurge(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockObjectChecker(ctrl)
	checker.EXPECT().Exists(gomock.Any(), "en/events/banner.png").Return(true, nil).Times(2)

	resolver := assets.NewURLResolver("https://cdn.example.com", checker, 16)
	ctx := context.Background()
	resolver.URL(ctx, catalog.ServerEN, "events", "banner.png")
	resolver.Purge()
	assert.Equal(t, 0, resolver.Len())
	resolver.URL(ctx, catalog.ServerEN, "events", "banner.png")
}

func TestURLResolverCheckerFailureIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockObjectChecker(ctrl)
	gomock.InOrder(
		checker.EXPECT().Exists(gomock.Any(), "jp/songs/1.png").Return(false, errors.New("timeout")),
		checker.EXPECT().Exists(gomock.Any(), "jp/songs/1.png").Return(true, nil),
	)

	resolver := assets.NewURLResolver("https://cdn.example.com", checker, 16)
	ctx := context.Background()
	assert.Equal(t, "", resolver.URL(ctx, catalog.ServerJP, "songs", "1.png"))
	assert.Equal(t, "https://cdn.example.com/jp/songs/1.png", resolver.URL(ctx, catalog.ServerJP, "songs", "1.png"))
}

func TestURLResolverWithoutChecker(t *testing.T) {
	resolver := assets.NewURLResolver("https://cdn.example.com", nil, 0)
	assert.Equal(t, "https://cdn.example.com/jp/stamps/a.png", resolver.URL(context.Background(), catalog.ServerJP, "stamps", "a.png"))

	var none *assets.URLResolver
	assert.Equal(t, "", none.URL(context.Background(), catalog.ServerJP, "stamps", "a.png"))
	none.Purge()
}

func TestMockSourceSatisfiesInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockSource(ctrl)
	source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(masters.NewSnapshot(), nil)

	var s assets.Source = source
	snapshot, err := s.Load(context.Background(), catalog.ServerJP)
	require.NoError(t, err)
	assert.NotNil(t, snapshot)
}
