package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// DirSource reads <root>/<server>/<kind>.json files.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Name() string {
	return "dir:" + s.root
}

func (s *DirSource) Load(ctx context.Context, server catalog.Server) (*masters.Snapshot, error) {
	dir := filepath.Join(s.root, string(server))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrServerMissing, dir)
	}

	return loadSnapshot(ctx, server, func(_ context.Context, kind string) (masters.Decoder, func() error, bool, error) {
		file, err := os.Open(filepath.Join(dir, kind+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, false, nil
		}
		if err != nil {
			return nil, nil, false, err
		}
		return json.NewDecoder(file).Decode, file.Close, true, nil
	})
}
