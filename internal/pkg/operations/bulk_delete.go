package operations

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// BulkWriteBatch is the generalized write handed over to a connection.
type BulkWriteBatch struct {
	Namespace       *CollectionNamespace
	Requests        []WriteRequest
	WriteConcern    *writeconcern.WriteConcern
	IsOrdered       bool
	EncoderSettings *MessageEncoderSettings
}

// Connection executes bulk writes against a server. It is borrowed for the
// duration of a call, never opened or closed by the operations.
//
// A write rejected by the server is reported through a partial failure
// outcome. Transport, cancellation and timeout failures are returned as
// errors.
type Connection interface {
	ExecuteBulkWrite(ctx context.Context, batch *BulkWriteBatch) (BulkWriteOutcome, error)
}

// BulkDeleteOperation runs a batch of delete requests through a connection.
type BulkDeleteOperation struct {
	collectionNamespace    *CollectionNamespace
	requests               []*DeleteRequest
	messageEncoderSettings *MessageEncoderSettings
	writeConcern           *writeconcern.WriteConcern
	isOrdered              bool
}

func NewBulkDeleteOperation(collectionNamespace *CollectionNamespace, requests []*DeleteRequest,
	messageEncoderSettings *MessageEncoderSettings) (*BulkDeleteOperation, error) {

	if collectionNamespace == nil {
		return nil, notNil("collectionNamespace")
	}
	if len(requests) == 0 {
		return nil, newArgumentError("requests", "must contain at least one request")
	}
	for i, request := range requests {
		if request == nil {
			return nil, notNil(fmt.Sprintf("requests[%d]", i))
		}
		if request.Criteria == nil {
			return nil, notNil(fmt.Sprintf("requests[%d].Criteria", i))
		}
		if request.Limit != 0 && request.Limit != 1 {
			return nil, newArgumentError(fmt.Sprintf("requests[%d].Limit", i), "must be 0 or 1")
		}
	}

	return &BulkDeleteOperation{
		collectionNamespace:    collectionNamespace,
		requests:               slices.Clone(requests),
		messageEncoderSettings: messageEncoderSettings,
		writeConcern:           writeconcern.W1(),
		isOrdered:              true,
	}, nil
}

func (op *BulkDeleteOperation) CollectionNamespace() *CollectionNamespace {
	return op.collectionNamespace
}

func (op *BulkDeleteOperation) Requests() []*DeleteRequest {
	return slices.Clone(op.requests)
}

func (op *BulkDeleteOperation) WriteConcern() *writeconcern.WriteConcern {
	return op.writeConcern
}

func (op *BulkDeleteOperation) SetWriteConcern(writeConcern *writeconcern.WriteConcern) error {
	if writeConcern == nil {
		return notNil("writeConcern")
	}
	op.writeConcern = writeConcern
	return nil
}

func (op *BulkDeleteOperation) IsOrdered() bool {
	return op.isOrdered
}

func (op *BulkDeleteOperation) SetOrdered(ordered bool) {
	op.isOrdered = ordered
}

// Execute sends the batch over the connection and waits for its outcome.
// A timeout of zero means no deadline other than the one carried by ctx.
func (op *BulkDeleteOperation) Execute(ctx context.Context, conn Connection, timeout time.Duration) (BulkWriteOutcome, error) {
	if conn == nil {
		return BulkWriteOutcome{}, notNil("connection")
	}
	if timeout < 0 {
		return BulkWriteOutcome{}, newArgumentError("timeout", "must not be negative")
	}

	// Nothing is sent once the caller gave up
	if err := ctx.Err(); err != nil {
		return BulkWriteOutcome{}, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	batch := op.batch()
	outcome, err := conn.ExecuteBulkWrite(ctx, batch)
	if err != nil {
		return BulkWriteOutcome{}, abortedOr(ctx, err)
	}

	switch outcome.Kind() {
	case BulkWriteSucceeded:
		if outcome.Result() == nil {
			return BulkWriteOutcome{}, errors.Wrap(ErrInvalidOutcome, "success without a result")
		}
		// Every request of a successful batch was processed
		return NewSucceededOutcome(withProcessed(outcome.Result(), batch.Requests, nil)), nil
	case BulkWritePartiallyFailed:
		failure := outcome.Failure()
		result := outcome.Result()
		if result != nil {
			result = withProcessed(result, batch.Requests, failure.UnprocessedRequests)
		}
		return NewPartialFailureOutcome(result, failure), nil
	default:
		return BulkWriteOutcome{}, ErrInvalidOutcome
	}
}

// withProcessed returns a copy of the connection's result with the processed
// requests filled in when the connection left them out. The result owned by
// the connection is never written to.
func withProcessed(result *BulkWriteOperationResult, requests, unprocessed []WriteRequest) *BulkWriteOperationResult {
	normalized := *result
	if len(normalized.ProcessedRequests) == 0 && len(unprocessed) < len(requests) {
		normalized.ProcessedRequests = requests[:len(requests)-len(unprocessed)]
	}
	if normalized.RequestCount == 0 {
		normalized.RequestCount = len(requests)
	}
	return &normalized
}

func (op *BulkDeleteOperation) batch() *BulkWriteBatch {
	requests := make([]WriteRequest, 0, len(op.requests))
	for _, request := range op.requests {
		requests = append(requests, request)
	}
	return &BulkWriteBatch{
		Namespace:       op.collectionNamespace,
		Requests:        requests,
		WriteConcern:    op.writeConcern,
		IsOrdered:       op.isOrdered,
		EncoderSettings: op.messageEncoderSettings,
	}
}

// abortedOr keeps err untouched unless the context ended while the call was
// in flight and err does not already say so. The result then matches both
// the context error and err.
func abortedOr(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ctxErr, err)
}
