package searchclient

import (
	"context"
	"sync"
)

// FakeClient is an in-memory Client for orchestrator tests, grounded on
// the teacher's pattern of registering stub activities by name instead of
// hitting the network. Safe for concurrent use, since the quick-pass
// runner calls Search from one goroutine per component.
type FakeClient struct {
	// Responses maps a query to the pages it should return. A query with
	// no entry returns no pages and no error.
	Responses map[string][]Page
	// Err, if set, is returned for every call regardless of query.
	Err error
	// Calls records every query passed to Search, in order.
	Calls []string

	mu sync.Mutex
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: make(map[string][]Page)}
}

func (f *FakeClient) Search(_ context.Context, req Request) ([]Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, req.Query)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Responses[req.Query], nil
}
