package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore persists values as a JSON object in a single file readable only by its owner.
// Every write replaces the file through a rename so readers never see a partial file.
type FileStore struct {
	path string
	lock sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[FileStore Clear] %w", err)
	}
	return nil
}

func (f *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore] read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("[FileStore] decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore] encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[FileStore] create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("[FileStore] temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore] write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("[FileStore] rename: %w", err)
	}
	return nil
}
