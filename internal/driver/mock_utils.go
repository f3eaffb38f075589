package driver

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockCall struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver records every query it receives. Handler, when set, answers
// each call; otherwise MockResult and Err are returned.
type MockDriver struct {
	mu         sync.Mutex
	Calls      []MockCall
	Handler    func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
	MockResult neo4j.EagerResult
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Query: query, Params: params})
	handler := m.Handler
	m.mu.Unlock()

	if handler != nil {
		return handler(query, params)
	}
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

// Executed returns a copy of the calls seen so far.
func (m *MockDriver) Executed() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.Calls...)
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// NewRecord builds a result row answering Get for each key.
func NewRecord(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
