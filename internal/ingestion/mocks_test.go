package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/your-org/videogate/internal/grafana"
	"github.com/your-org/videogate/internal/revai"
	"github.com/your-org/videogate/pkg/storage/objectstore"
)

// memStore is an in-memory objectstore.Client.
type memObject struct {
	data        []byte
	contentType string
}

type memStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]memObject{}}
}

func (s *memStore) Put(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (io.ReadCloser, objectstore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, objectstore.ObjectInfo{}, objectstore.ErrNotFound
	}
	info := objectstore.ObjectInfo{ContentType: obj.contentType, Size: int64(len(obj.data))}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// fakeRecords mimics the proxy's partial-overwrite upsert semantics.
type fakeRecords struct {
	mu      sync.Mutex
	records map[string]map[string]any
	err     error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[string]map[string]any{}}
}

func (f *fakeRecords) Upsert(_ context.Context, title string, fields map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.records[title]
	if !ok {
		existing = map[string]any{}
		f.records[title] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

// RecordUpserterMock is the testify variant, for call-count assertions.
type RecordUpserterMock struct {
	mock.Mock
}

func (m *RecordUpserterMock) Upsert(ctx context.Context, title string, fields map[string]any) error {
	args := m.Called(ctx, title, fields)
	return args.Error(0)
}

// sinkStub collects emitted events and optionally fails every delivery.
type sinkStub struct {
	mu     sync.Mutex
	events []grafana.Event
	err    error
}

func (s *sinkStub) Emit(_ context.Context, event grafana.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *sinkStub) levels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	levels := make([]string, 0, len(s.events))
	for _, e := range s.events {
		levels = append(levels, e.Level)
	}
	return levels
}

// dispatcherStub records submissions.
type dispatcherStub struct {
	res      revai.Result
	err      error
	calls    int
	gotURL   string
	gotLabel string
}

func (d *dispatcherStub) Submit(_ context.Context, mediaURL, label string) (revai.Result, error) {
	d.calls++
	d.gotURL = mediaURL
	d.gotLabel = label
	return d.res, d.err
}

// publisherStub captures published upload events.
type publisherStub struct {
	keys     [][]byte
	payloads [][]byte
	err      error
}

func (p *publisherStub) Publish(_ context.Context, key, value []byte, _ map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, value)
	return nil
}

var errBackendDown = errors.New("backend down")
