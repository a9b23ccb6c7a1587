package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

//KV is the string key/value storage the snapshots are persisted to
type KV interface {
	Get(key string) (value string, ok bool, err error)
	//SetAll writes all the values at once, either every value is stored or none
	SetAll(values map[string]string) error
	Delete(keys ...string) error
}

//MemoryKV keeps the values in memory
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

var (
	_ KV = (*MemoryKV)(nil)
	_ KV = (*FileKV)(nil)
)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) SetAll(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *MemoryKV) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

//FileKV keeps the values in one JSON object file
//the file is rewritten through a temporary file and renamed into place
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileKV) SetAll(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, err := f.read()
	if err != nil {
		//the unreadable file is replaced by the new values
		current = map[string]string{}
	}
	for k, v := range values {
		current[k] = v
	}
	return f.write(current)
}

func (f *FileKV) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, err := f.read()
	if err != nil {
		return f.write(map[string]string{})
	}
	for _, k := range keys {
		delete(current, k)
	}
	return f.write(current)
}

//read loads the file, the missing file is the empty storage
func (f *FileKV) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[FileKV.read] failed to read file: %+v", f.path)
	}
	if err = json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "[FileKV.read] failed to unmarshal data from file: %+v", f.path)
	}
	return values, nil
}

func (f *FileKV) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileKV.write] failed to marshal values")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "[FileKV.write] failed to create temporary file for: %+v", f.path)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[FileKV.write] failed to write file: %+v", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "[FileKV.write] failed to close file: %+v", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "[FileKV.write] failed to replace file: %+v", f.path)
	}
	return nil
}
