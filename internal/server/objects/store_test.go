package objects

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/netx"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// memStore is an in-memory Store with per-key failure injection.
type memStore struct {
	mu       sync.Mutex
	objects  map[string]memObject
	clock    time.Time
	getErr   map[string]error
	listErr  error
	putErr   error
	puts     map[string]int // by mode
	lists    int
	deletes  int
	lastType string
}

func newMemStore() *memStore {
	return &memStore{
		objects: map[string]memObject{},
		clock:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		getErr:  map[string]error{},
		puts:    map[string]int{},
	}
}

func (m *memStore) resolver() Resolver {
	return ResolverFunc(func(context.Context) (Store, error) { return m, nil })
}

// seed stores data, advancing the store clock one second per call.
func (m *memStore) seed(key, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	m.objects[key] = memObject{data: []byte(data), modified: m.clock}
}

func (m *memStore) data(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return string(o.data), ok
}

func (m *memStore) meta(key string, o memObject) storage.Object {
	return storage.Object{Key: key, Size: int64(len(o.data)), LastModified: o.modified, ContentType: o.contentType}
}

func (m *memStore) List(_ context.Context, prefix string) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []storage.Object
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, m.meta(k, o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) Get(_ context.Context, key string) (*storage.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[key]; err != nil {
		return nil, err
	}
	o, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, common.ErrorNotFound)
	}
	return &storage.Content{Object: m.meta(key, o), Body: io.NopCloser(bytes.NewReader(o.data))}, nil
}

func (m *memStore) Head(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("head %q: %w", key, common.ErrorNotFound)
	}
	meta := m.meta(key, o)
	return &meta, nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Head(ctx, key)
	return err == nil, nil
}

func (m *memStore) put(mode, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return err
	}
	b, err := io.ReadAll(netx.NewProgressReader(body, size, onProgress))
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[mode]++
	if m.putErr != nil {
		return m.putErr
	}
	m.clock = m.clock.Add(time.Second)
	m.lastType = contentType
	m.objects[key] = memObject{data: b, contentType: contentType, modified: m.clock}
	return nil
}

func (m *memStore) PutDirect(_ context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	return m.put(ModeDirect, key, body, size, contentType, onProgress)
}

func (m *memStore) PutPresigned(_ context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	return m.put(ModePresigned, key, body, size, contentType, onProgress)
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.objects, key)
	return nil
}
