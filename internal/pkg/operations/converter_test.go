package operations_test

import (
	"testing"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func deleteRequests(n int) []operations.WriteRequest {
	requests := make([]operations.WriteRequest, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, operations.NewDeleteRequest(bson.D{{Key: "i", Value: i}}))
	}
	return requests
}

func TestToWriteConcernResult(t *testing.T) {
	converter := operations.BulkWriteOperationResultConverter{}
	update := &operations.UpdateRequest{Criteria: bson.D{}, Update: bson.D{}}

	tests := []struct {
		name            string
		result          *operations.BulkWriteOperationResult
		n               int64
		updatedExisting bool
		upserted        interface{}
	}{
		{
			name: "delete",
			result: &operations.BulkWriteOperationResult{
				Acknowledged: true, DeletedCount: 5, MatchedCount: 7,
				ProcessedRequests: deleteRequests(1),
			},
			n: 5,
		},
		{
			name: "insert",
			result: &operations.BulkWriteOperationResult{
				Acknowledged: true, InsertedCount: 3,
				ProcessedRequests: []operations.WriteRequest{&operations.InsertRequest{Document: bson.D{}}},
			},
			n: 0,
		},
		{
			name: "update existing",
			result: &operations.BulkWriteOperationResult{
				Acknowledged: true, MatchedCount: 2, ModifiedCount: 2,
				ProcessedRequests: []operations.WriteRequest{update},
			},
			n: 2, updatedExisting: true,
		},
		{
			name: "upsert",
			result: &operations.BulkWriteOperationResult{
				Acknowledged: true,
				Upserts:      []operations.BulkWriteOperationUpsert{{Index: 0, ID: "abc"}},
				ProcessedRequests: []operations.WriteRequest{update},
			},
			n: 1, upserted: "abc",
		},
	}

	for _, test := range tests {
		result := converter.ToWriteConcernResult(test.result)
		require.NotNil(t, result, test.name)
		assert.Equal(t, test.n, result.DocumentsAffected(), test.name)
		assert.Equal(t, test.updatedExisting, result.UpdatedExisting(), test.name)
		assert.Equal(t, test.upserted, result.Upserted(), test.name)
		assert.False(t, result.HasLastErrorMessage(), test.name)
		_, hasCode := result.Code()
		assert.False(t, hasCode, test.name)
	}
}

func TestToWriteConcernResultUnacknowledged(t *testing.T) {
	converter := operations.BulkWriteOperationResultConverter{}

	assert.Nil(t, converter.ToWriteConcernResult(nil))
	assert.Nil(t, converter.ToWriteConcernResult(&operations.BulkWriteOperationResult{
		Acknowledged: false, DeletedCount: 1, ProcessedRequests: deleteRequests(1),
	}))
}

func TestToWriteConcernErrorFromWriteErrors(t *testing.T) {
	converter := operations.BulkWriteOperationResultConverter{}
	result := &operations.BulkWriteOperationResult{
		Acknowledged: true, DeletedCount: 1, ProcessedRequests: deleteRequests(3),
	}
	failure := &operations.BulkWriteFailure{
		WriteErrors: []operations.BulkWriteError{
			{Index: 0, Code: 2, Message: "bad value"},
			{Index: 2, Code: 11000, Message: "E11000 duplicate key error"},
		},
	}

	wcErr := converter.ToWriteConcernError(result, failure)

	assert.Equal(t, 11000, wcErr.Code)
	assert.Equal(t, "E11000 duplicate key error", wcErr.Message)
	assert.Equal(t, 2, wcErr.Index)
	assert.True(t, wcErr.IsDuplicateKey())
	assert.True(t, wcErr.HasErrorCode(11000))
	assert.Contains(t, wcErr.Error(), "E11000 duplicate key error")

	require.NotNil(t, wcErr.Result)
	assert.Equal(t, int64(1), wcErr.Result.DocumentsAffected())
	assert.Equal(t, "E11000 duplicate key error", wcErr.Result.LastErrorMessage())
	code, ok := wcErr.Result.Code()
	assert.True(t, ok)
	assert.Equal(t, 11000, code)
}

func TestToWriteConcernErrorFromWriteConcernError(t *testing.T) {
	details, err := bson.Marshal(bson.D{{Key: "wtimeout", Value: true}, {Key: "n", Value: 99}})
	require.NoError(t, err)

	converter := operations.BulkWriteOperationResultConverter{}
	result := &operations.BulkWriteOperationResult{
		Acknowledged: true, DeletedCount: 4, ProcessedRequests: deleteRequests(1),
	}
	failure := &operations.BulkWriteFailure{
		WriteConcernError: &operations.WriteConcernErrorDetail{
			Code: 64, Name: "WriteConcernFailed", Message: "waiting for replication timed out", Details: details,
		},
	}

	wcErr := converter.ToWriteConcernError(result, failure)

	assert.Equal(t, 64, wcErr.Code)
	assert.Equal(t, -1, wcErr.Index)
	assert.Equal(t, []string{"WriteConcernFailed"}, wcErr.Labels)
	assert.False(t, wcErr.IsDuplicateKey())

	require.NotNil(t, wcErr.Result)
	// n from the details never overrides the counted one
	assert.Equal(t, int64(4), wcErr.Result.DocumentsAffected())
	assert.Equal(t, "waiting for replication timed out", wcErr.Result.LastErrorMessage())

	var wtimeout interface{}
	for _, e := range wcErr.Result.Response() {
		if e.Key == "wtimeout" {
			wtimeout = e.Value
		}
	}
	require.IsType(t, bson.RawValue{}, wtimeout)
	assert.True(t, wtimeout.(bson.RawValue).Boolean())
}

func TestToWriteConcernErrorWithoutDetail(t *testing.T) {
	converter := operations.BulkWriteOperationResultConverter{}

	wcErr := converter.ToWriteConcernError(nil, &operations.BulkWriteFailure{})
	assert.Equal(t, 0, wcErr.Code)
	assert.Equal(t, -1, wcErr.Index)
	assert.NotEmpty(t, wcErr.Message)
	assert.Nil(t, wcErr.Result)

	wcErr = converter.ToWriteConcernError(nil, nil)
	assert.NotEmpty(t, wcErr.Message)
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		code     int
		message  string
		expected bool
	}{
		{11000, "", true},
		{11001, "", true},
		{12582, "", true},
		{16460, "error E11000 duplicate", true},
		{16460, "something else", false},
		{2, "E11000", false},
	}

	for _, test := range tests {
		wcErr := &operations.WriteConcernError{Code: test.code, Message: test.message}
		assert.Equal(t, test.expected, wcErr.IsDuplicateKey(), "IsDuplicateKey(%d, %q)", test.code, test.message)
	}
}
