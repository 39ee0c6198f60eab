package operations

import (
	"go.mongodb.org/mongo-driver/bson"
)

const defaultBulkWriteFailureMessage = "bulk write operation failed"

// BulkWriteOperationResultConverter maps bulk write results back onto the
// shapes of the legacy single write protocol.
type BulkWriteOperationResultConverter struct{}

// ToWriteConcernResult returns nil for an unacknowledged result.
func (c BulkWriteOperationResultConverter) ToWriteConcernResult(result *BulkWriteOperationResult) *WriteConcernResult {
	return c.toWriteConcernResult(result, nil)
}

// ToWriteConcernError builds the legacy error from the last write error of
// the failure, or from its write concern error when no request failed.
func (c BulkWriteOperationResultConverter) ToWriteConcernError(result *BulkWriteOperationResult, failure *BulkWriteFailure) *WriteConcernError {
	wcErr := &WriteConcernError{
		Message: defaultBulkWriteFailureMessage,
		Index:   -1,
		Result:  c.toWriteConcernResult(result, failure),
	}

	if last := failure.lastWriteError(); last != nil {
		wcErr.Code = last.Code
		wcErr.Message = last.Message
		wcErr.Index = last.Index
	} else if failure != nil && failure.WriteConcernError != nil {
		wcErr.Code = failure.WriteConcernError.Code
		wcErr.Message = failure.WriteConcernError.Message
		if failure.WriteConcernError.Name != "" {
			wcErr.Labels = []string{failure.WriteConcernError.Name}
		}
	}
	return wcErr
}

func (BulkWriteOperationResultConverter) toWriteConcernResult(result *BulkWriteOperationResult, failure *BulkWriteFailure) *WriteConcernResult {
	if result == nil || !result.Acknowledged {
		return nil
	}

	var requestType WriteRequestType
	if len(result.ProcessedRequests) > 0 {
		requestType = result.ProcessedRequests[0].RequestType()
	}

	// Inserts always reported n: 0 in getLastError
	var n int64
	switch requestType {
	case UpdateRequestType:
		n = result.MatchedCount + int64(len(result.Upserts))
	case DeleteRequestType:
		n = result.DeletedCount
	}

	response := bson.D{
		{Key: "ok", Value: 1},
		{Key: "n", Value: n},
	}

	if last := failure.lastWriteError(); last != nil {
		response = append(response,
			bson.E{Key: "err", Value: last.Message},
			bson.E{Key: "code", Value: last.Code})
	} else if failure != nil && failure.WriteConcernError != nil {
		response = append(response,
			bson.E{Key: "err", Value: failure.WriteConcernError.Message},
			bson.E{Key: "code", Value: failure.WriteConcernError.Code})
	}

	if requestType == UpdateRequestType {
		if len(result.Upserts) > 0 {
			response = append(response,
				bson.E{Key: "updatedExisting", Value: false},
				bson.E{Key: "upserted", Value: result.Upserts[0].ID})
		} else {
			response = append(response, bson.E{Key: "updatedExisting", Value: result.MatchedCount > 0})
		}
	}

	if failure != nil && failure.WriteConcernError != nil && len(failure.WriteConcernError.Details) > 0 {
		response = mergeDetails(response, failure.WriteConcernError.Details)
	}

	return NewWriteConcernResult(response)
}

// Appends the details elements not already present in the response
func mergeDetails(response bson.D, details bson.Raw) bson.D {
	elements, err := details.Elements()
	if err != nil {
		return response
	}
	for _, element := range elements {
		key := element.Key()
		if lookup(response, key) != nil {
			continue
		}
		response = append(response, bson.E{Key: key, Value: element.Value()})
	}
	return response
}
