package mdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/metrics"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OutcomeSucceeded       = "succeeded"
	OutcomePartiallyFailed = "partially_failed"
	OutcomeError           = "error"

	FailureDuplicateKey = "duplicate_key"
	FailureWrite        = "write_error"
	FailureWriteConcern = "write_concern"
)

// Connection runs bulk writes through the driver. The client is shared and
// owned by the MDB it was borrowed from.
type Connection struct {
	client *mongo.Client
}

func NewConnection(client *mongo.Client) *Connection {
	return &Connection{client: client}
}

func (c *Connection) ExecuteBulkWrite(ctx context.Context, batch *operations.BulkWriteBatch) (operations.BulkWriteOutcome, error) {
	if batch == nil || batch.Namespace == nil {
		return operations.BulkWriteOutcome{}, errors.New("bulk write batch has no namespace")
	}

	models, err := toDriverModels(batch.Requests)
	if err != nil {
		return operations.BulkWriteOutcome{}, err
	}

	collOpts := options.Collection()
	if batch.WriteConcern != nil {
		collOpts.SetWriteConcern(batch.WriteConcern)
	}
	if batch.EncoderSettings != nil && batch.EncoderSettings.Registry != nil {
		collOpts.SetRegistry(batch.EncoderSettings.Registry)
	}

	db, coll := batch.Namespace.DatabaseName(), batch.Namespace.CollectionName()
	collection := c.client.Database(db).Collection(coll, collOpts)

	opts := options.BulkWrite().SetOrdered(batch.IsOrdered)
	res, bulkErr := collection.BulkWrite(ctx, models, opts)

	outcome, err := outcomeFrom(batch, res, bulkErr)
	if err != nil {
		log.ErrorWithFields("bulk write failed", log.Fields{
			"ns":  batch.Namespace.FullName(),
			"err": err,
		})
		metrics.BulkWriteCounter.WithLabelValues(db, coll, OutcomeError).Inc()
		return outcome, err
	}

	metrics.BulkWriteCounter.WithLabelValues(db, coll, outcomeLabel(outcome)).Inc()
	if failure := outcome.Failure(); failure != nil {
		metrics.BulkWriteFailureTotal.WithLabelValues(db, coll, failureLabel(bulkErr, failure)).Inc()
	}
	return outcome, nil
}

// outcomeFrom sorts what the driver returned into a success, a partial
// failure or an error to hand back untouched.
func outcomeFrom(batch *operations.BulkWriteBatch, res *mongo.BulkWriteResult, err error) (operations.BulkWriteOutcome, error) {
	acknowledged := batch.WriteConcern.Acknowledged()

	if err == nil {
		return operations.NewSucceededOutcome(toResult(res, batch, acknowledged, batch.Requests)), nil
	}

	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return operations.NewSucceededOutcome(toResult(res, batch, false, batch.Requests)), nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		failure, processed := toFailure(bwe, batch)
		return operations.NewPartialFailureOutcome(toResult(res, batch, acknowledged, processed), failure), nil
	}

	return operations.BulkWriteOutcome{}, err
}

func toResult(res *mongo.BulkWriteResult, batch *operations.BulkWriteBatch, acknowledged bool,
	processed []operations.WriteRequest) *operations.BulkWriteOperationResult {

	result := &operations.BulkWriteOperationResult{
		Acknowledged:      acknowledged,
		RequestCount:      len(batch.Requests),
		ProcessedRequests: processed,
	}
	if res == nil {
		return result
	}

	result.MatchedCount = res.MatchedCount
	result.DeletedCount = res.DeletedCount
	result.InsertedCount = res.InsertedCount
	result.ModifiedCount = res.ModifiedCount

	for index, id := range res.UpsertedIDs {
		result.Upserts = append(result.Upserts, operations.BulkWriteOperationUpsert{Index: int(index), ID: id})
	}
	sort.Slice(result.Upserts, func(i, j int) bool {
		return result.Upserts[i].Index < result.Upserts[j].Index
	})
	return result
}

// An ordered batch stops at the first failed request, the requests after it
// are reported as unprocessed.
func toFailure(bwe mongo.BulkWriteException, batch *operations.BulkWriteBatch) (*operations.BulkWriteFailure, []operations.WriteRequest) {
	failure := &operations.BulkWriteFailure{}
	processed := batch.Requests

	lastIndex := -1
	for _, we := range bwe.WriteErrors {
		failure.WriteErrors = append(failure.WriteErrors, operations.BulkWriteError{
			Index:   we.Index,
			Code:    we.Code,
			Message: we.Message,
			Details: we.Details,
		})
		if we.Index > lastIndex {
			lastIndex = we.Index
		}
	}

	if wce := bwe.WriteConcernError; wce != nil {
		failure.WriteConcernError = &operations.WriteConcernErrorDetail{
			Code:    wce.Code,
			Name:    wce.Name,
			Message: wce.Message,
			Details: wce.Details,
		}
	}

	if batch.IsOrdered && lastIndex >= 0 && lastIndex+1 < len(batch.Requests) {
		processed = batch.Requests[:lastIndex+1]
		failure.UnprocessedRequests = batch.Requests[lastIndex+1:]
	}
	return failure, processed
}

func toDriverModels(requests []operations.WriteRequest) ([]mongo.WriteModel, error) {
	models := make([]mongo.WriteModel, 0, len(requests))
	for i, request := range requests {
		model, err := toDriverModel(request)
		if err != nil {
			return nil, errors.Wrapf(err, "request %d", i)
		}
		models = append(models, model)
	}
	return models, nil
}

func toDriverModel(request operations.WriteRequest) (mongo.WriteModel, error) {
	switch r := request.(type) {
	case *operations.InsertRequest:
		return mongo.NewInsertOneModel().SetDocument(r.Document), nil
	case *operations.UpdateRequest:
		switch {
		case r.Kind == operations.UpdateKindReplacement && r.IsMulti:
			return nil, errors.New("a replacement cannot target many documents")
		case r.Kind == operations.UpdateKindReplacement:
			return mongo.NewReplaceOneModel().SetFilter(r.Criteria).SetReplacement(r.Update).SetUpsert(r.IsUpsert), nil
		case r.IsMulti:
			return mongo.NewUpdateManyModel().SetFilter(r.Criteria).SetUpdate(r.Update).SetUpsert(r.IsUpsert), nil
		default:
			return mongo.NewUpdateOneModel().SetFilter(r.Criteria).SetUpdate(r.Update).SetUpsert(r.IsUpsert), nil
		}
	case *operations.DeleteRequest:
		switch r.Limit {
		case 0:
			return mongo.NewDeleteManyModel().SetFilter(r.Criteria), nil
		case 1:
			return mongo.NewDeleteOneModel().SetFilter(r.Criteria), nil
		default:
			return nil, fmt.Errorf("unsupported delete limit %d", r.Limit)
		}
	default:
		return nil, fmt.Errorf("unsupported write request %T", request)
	}
}

func outcomeLabel(outcome operations.BulkWriteOutcome) string {
	if outcome.Kind() == operations.BulkWritePartiallyFailed {
		return OutcomePartiallyFailed
	}
	return OutcomeSucceeded
}

func failureLabel(err error, failure *operations.BulkWriteFailure) string {
	if IsDuplicateKeyError(err) {
		return FailureDuplicateKey
	}
	if len(failure.WriteErrors) == 0 && failure.WriteConcernError != nil {
		return FailureWriteConcern
	}
	return FailureWrite
}
