package manager

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/assets/mock"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/masters/mastertest"
)

func newManager(t *testing.T, servers ...catalog.Server) (*Manager, *mock.MockSource) {
	t.Helper()
	ctrl := gomock.NewController(t)
	source := mock.NewMockSource(ctrl)
	source.EXPECT().Name().Return("mock").AnyTimes()
	return New(source, Options{Servers: servers}), source
}

func TestCurrentBeforeLoad(t *testing.T) {
	m, _ := newManager(t, catalog.ServerJP)
	_, err := m.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestReloadBuildsEveryServer(t *testing.T) {
	m, source := newManager(t, catalog.ServerJP, catalog.ServerEN)
	source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(mastertest.Snapshot(), nil)
	source.EXPECT().Load(gomock.Any(), catalog.ServerEN).Return(mastertest.Snapshot(), nil)

	c, err := m.Reload(context.Background())
	require.NoError(t, err)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, c, current)
	assert.Equal(t, []catalog.Server{catalog.ServerJP, catalog.ServerEN}, current.Servers)
	assert.Equal(t, []catalog.Server{catalog.ServerJP, catalog.ServerEN}, current.Cards.Servers())
	assert.Positive(t, current.Cards.Len(catalog.ServerEN))
	assert.Len(t, current.All(), 8)
}

func TestFailedReloadKeepsPreviousCatalog(t *testing.T) {
	m, source := newManager(t, catalog.ServerJP, catalog.ServerEN)
	gomock.InOrder(
		source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(mastertest.Snapshot(), nil),
		source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(mastertest.Snapshot(), nil),
	)
	gomock.InOrder(
		source.EXPECT().Load(gomock.Any(), catalog.ServerEN).Return(mastertest.Snapshot(), nil),
		source.EXPECT().Load(gomock.Any(), catalog.ServerEN).Return(nil, assets.ErrServerMissing),
	)

	first, err := m.Reload(context.Background())
	require.NoError(t, err)

	_, err = m.Reload(context.Background())
	require.ErrorIs(t, err, assets.ErrServerMissing)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestReloadPurgesAssetURLs(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockObjectChecker(ctrl)
	checker.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	urls := assets.NewURLResolver("https://cdn.example.com", checker, 16)

	source := mock.NewMockSource(ctrl)
	source.EXPECT().Name().Return("mock").AnyTimes()
	source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(mastertest.Snapshot(), nil).Times(2)
	m := New(source, Options{Servers: []catalog.Server{catalog.ServerJP}, URLs: urls})

	_, err := m.Reload(context.Background())
	require.NoError(t, err)
	urls.URL(context.Background(), catalog.ServerJP, "cards", "101_0.png")
	require.Equal(t, 1, urls.Len())

	_, err = m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, urls.Len())
}

func TestReloadRejectsBrokenAliases(t *testing.T) {
	m, _ := newManager(t, catalog.ServerJP)
	m.opts.AliasesPath = "testdata/missing.yaml"

	_, err := m.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load aliases")
}

func TestReloadWithoutServers(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Reload(context.Background())
	require.Error(t, err)
}

func TestScheduleRejectsInvalidExpression(t *testing.T) {
	m, _ := newManager(t, catalog.ServerJP)
	err := m.Schedule("every tuesday", nil)
	require.Error(t, err)
	m.Stop()
}

func TestScheduleStartsAndStops(t *testing.T) {
	m, _ := newManager(t, catalog.ServerJP)
	require.NoError(t, m.Schedule("0 4 * * *", nil))
	m.Stop()
}

func TestLoadErrorsAreWrapped(t *testing.T) {
	m, source := newManager(t, catalog.ServerJP)
	boom := errors.New("boom")
	source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(nil, boom)

	_, err := m.Reload(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to load jp from mock")
}

func TestReloadLogsRecordCounts(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logger.NewHandler(&buf, logger.Options{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	m, source := newManager(t, catalog.ServerJP)
	source.EXPECT().Load(gomock.Any(), catalog.ServerJP).Return(mastertest.Snapshot(), nil)
	_, err := m.Reload(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Server snapshot loaded")
	assert.Contains(t, out, "songs:4")
	assert.Contains(t, out, "[SYS] Catalog reloaded")
}
