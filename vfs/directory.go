package vfs

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirectoryDriver fetches locations from the local filesystem. Relative
// locations are taken against the driver's root directory, absolute ones
// are used as-is.
type DirectoryDriver struct {
	root string
}

func NewDirectoryDriver(root string) *DirectoryDriver {
	return &DirectoryDriver{root: root}
}

func (dd *DirectoryDriver) Root() string {
	return dd.root
}

func (dd *DirectoryDriver) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(dd.root, filepath.FromSlash(location))
	}

	if s, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "Stat error for '%s'", path)
	} else if s.IsDir() {
		return nil, errors.Errorf("Location '%s' is a directory", path)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading '%s'", path)
	}
	return data, nil
}
