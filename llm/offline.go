package llm

import "context"

// OfflineStub is returned for every call in offline mode
const OfflineStub = `{"hypothesis": "DEBUG", "keywords": ["test"], "legal_domain": "général"}`

// OfflineClient never leaves the process
type OfflineClient struct{}

// Complete implements ChatModel
func (OfflineClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return OfflineStub, nil
}
