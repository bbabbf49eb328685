package invoicescan

import "context"

// MockAIClient returns canned extractions for tests.
type MockAIClient struct {
	Extraction *ExtractedInvoice
	Err        error

	// Requests records every request seen, in order.
	Requests []ExtractRequest
}

func (m *MockAIClient) ExtractInvoice(_ context.Context, req ExtractRequest) (*ExtractedInvoice, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Extraction, nil
}
