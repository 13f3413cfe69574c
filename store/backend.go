package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotExist is returned by a Backend that holds no document yet
var ErrNotExist = errors.New("config document does not exist")

// Backend reads and overwrites the whole config document
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	String() string
}

// MemoryBackend keeps the document in memory, failures can be injected
type MemoryBackend struct {
	sync.Mutex
	data      []byte
	ReadErr   error
	WriteErr  error
	WriteHook func(data []byte)
	Writes    int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	m.Lock()
	defer m.Unlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if m.data == nil {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte) error {
	m.Lock()
	defer m.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), data...)
	m.Writes++
	if m.WriteHook != nil {
		m.WriteHook(m.data)
	}
	return nil
}

// Data returns the last written document
func (m *MemoryBackend) Data() []byte {
	m.Lock()
	defer m.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *MemoryBackend) String() string {
	return "memory"
}
