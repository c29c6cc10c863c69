package llmclient

import (
	"context"
	"fmt"
	"sync"
)

// FakeClient is a test double for Client: Responses is consulted in order
// by AgentID, falling back to Default when no queued response remains for
// that stage. Calls records every request for assertions. Safe for
// concurrent use, since the quick-pass runner calls Generate from one
// goroutine per component.
type FakeClient struct {
	Responses map[string][]Response
	Default   Response
	Err       error
	Calls     []Request

	mu sync.Mutex
}

// NewFakeClient returns an empty FakeClient ready for Responses to be
// populated by stage (AgentID).
func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: make(map[string][]Response)}
}

// Queue appends a canned response for the given stage's AgentID.
func (f *FakeClient) Queue(agentID string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[agentID] = append(f.Responses[agentID], resp)
}

// Generate implements Client.
func (f *FakeClient) Generate(_ context.Context, req Request) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, req)
	if f.Err != nil {
		return Response{}, f.Err
	}
	queue := f.Responses[req.AgentID]
	if len(queue) > 0 {
		resp := queue[0]
		f.Responses[req.AgentID] = queue[1:]
		return resp, nil
	}
	if f.Default.Text != "" {
		return f.Default, nil
	}
	return Response{}, fmt.Errorf("llmclient: fake client has no queued response for agent %q", req.AgentID)
}
