package store

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileBackend stores the document as a JSON file. Writes go to a temp file
// that is renamed over the old one, a failed write leaves the old file intact.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := ioutil.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	return data, errors.Wrapf(err, "reading %s", f.path)
}

func (f *FileBackend) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := ioutil.TempFile(dir, filepath.Base(f.path)+".tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "syncing %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}

	return errors.Wrapf(os.Rename(tmp.Name(), f.path), "replacing %s", f.path)
}

func (f *FileBackend) String() string {
	return "file:" + f.path
}
