package objects

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/server/models"
)

// DirSource serves files from a local directory. Lookups are confined to
// the directory by os.Root, on top of the name validation done upstream.
// Everything is served as image/gif whatever the extension.
type DirSource struct {
	root *os.Root
}

func NewDirSource(dir string) (*DirSource, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &DirSource{root: root}, nil
}

func (d *DirSource) Name() string {
	return models.MethodStatic
}

func (d *DirSource) Open(_ context.Context, name string) (*Object, error) {
	f, err := d.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, common.ErrorNotFound
	}

	return &Object{
		Body:        f,
		ContentType: common.DefaultContentType,
		Size:        info.Size(),
		Source:      d.Name(),
	}, nil
}

func (d *DirSource) Close() error {
	return d.root.Close()
}
