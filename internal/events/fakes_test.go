package events

import (
	"context"
	"sync"
)

type memKeys struct {
	srcs    map[string]string
	err     error
	lookups int
}

func (m *memKeys) SourceForKey(_ context.Context, key string) (string, error) {
	m.lookups++
	if m.err != nil {
		return "", m.err
	}
	return m.srcs[key], nil
}

type memEvents struct {
	mu      sync.Mutex
	recs    []Record
	putErr  error
	readErr error
	puts    int
	reads   int
}

func (m *memEvents) PutEvent(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memEvents) QueryDay(_ context.Context, tsDay int64) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []Record
	for _, r := range m.recs {
		if r.TsDay == tsDay {
			out = append(out, r)
		}
	}
	return out, nil
}
