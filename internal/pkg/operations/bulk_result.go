package operations

import (
	"go.mongodb.org/mongo-driver/bson"
)

// BulkWriteOperationUpsert records the id generated for an upserted request.
type BulkWriteOperationUpsert struct {
	Index int
	ID    interface{}
}

// BulkWriteOperationResult holds the counts reported by a bulk write,
// whether it fully succeeded or stopped part way through.
type BulkWriteOperationResult struct {
	Acknowledged      bool
	RequestCount      int
	MatchedCount      int64
	DeletedCount      int64
	InsertedCount     int64
	ModifiedCount     int64
	Upserts           []BulkWriteOperationUpsert
	ProcessedRequests []WriteRequest
}

// BulkWriteError is a per request failure reported by the server.
type BulkWriteError struct {
	Index   int
	Code    int
	Message string
	Details bson.Raw
}

// WriteConcernErrorDetail is reported when the writes were applied but the
// requested durability could not be confirmed.
type WriteConcernErrorDetail struct {
	Code    int
	Name    string
	Message string
	Details bson.Raw
}

// BulkWriteFailure describes why a bulk write did not fully succeed.
type BulkWriteFailure struct {
	WriteErrors         []BulkWriteError
	WriteConcernError   *WriteConcernErrorDetail
	UnprocessedRequests []WriteRequest
}

func (f *BulkWriteFailure) lastWriteError() *BulkWriteError {
	if f == nil || len(f.WriteErrors) == 0 {
		return nil
	}
	return &f.WriteErrors[len(f.WriteErrors)-1]
}
