package mocks

import (
	"context"
	"sync"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
)

// MockConnection is an in-memory operations.Connection. It records every
// batch and replies with a canned outcome or error.
type MockConnection struct {
	mu sync.Mutex

	Outcome operations.BulkWriteOutcome
	Err     error
	// Wait for the context to end before replying with its error
	Block bool

	Batches     []*operations.BulkWriteBatch
	HadDeadline bool
}

func NewMockConnection(outcome operations.BulkWriteOutcome) *MockConnection {
	return &MockConnection{Outcome: outcome}
}

func NewFailingMockConnection(err error) *MockConnection {
	return &MockConnection{Err: err}
}

func NewBlockingMockConnection() *MockConnection {
	return &MockConnection{Block: true}
}

func (c *MockConnection) ExecuteBulkWrite(ctx context.Context, batch *operations.BulkWriteBatch) (operations.BulkWriteOutcome, error) {
	c.mu.Lock()
	c.Batches = append(c.Batches, batch)
	_, c.HadDeadline = ctx.Deadline()
	c.mu.Unlock()

	if c.Block {
		<-ctx.Done()
		return operations.BulkWriteOutcome{}, ctx.Err()
	}
	return c.Outcome, c.Err
}

// Calls returns how many batches reached the connection.
func (c *MockConnection) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Batches)
}

// LastBatch returns the most recent batch, nil when nothing was sent.
func (c *MockConnection) LastBatch() *operations.BulkWriteBatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Batches) == 0 {
		return nil
	}
	return c.Batches[len(c.Batches)-1]
}

// DeletedOutcome is a successful outcome reporting n deleted documents.
func DeletedOutcome(n int64, acknowledged bool) operations.BulkWriteOutcome {
	return operations.NewSucceededOutcome(&operations.BulkWriteOperationResult{
		Acknowledged: acknowledged,
		RequestCount: 1,
		DeletedCount: n,
	})
}

// WriteErrorOutcome is a partial failure on the request at index.
func WriteErrorOutcome(index int, code int, message string, acknowledged bool) operations.BulkWriteOutcome {
	return operations.NewPartialFailureOutcome(
		&operations.BulkWriteOperationResult{
			Acknowledged: acknowledged,
			RequestCount: index + 1,
		},
		&operations.BulkWriteFailure{
			WriteErrors: []operations.BulkWriteError{{Index: index, Code: code, Message: message}},
		})
}
