package operations_test

import (
	"testing"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRemovalLimit(t *testing.T) {
	assert.Equal(t, 0, operations.RemovalLimit(true))
	assert.Equal(t, 1, operations.RemovalLimit(false))
}

func TestToWriteRequest(t *testing.T) {
	criteria := bson.D{{Key: "status", Value: "stale"}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: "fresh"}}}}

	insertOne, err := operations.NewInsertOneModel(bson.D{{Key: "a", Value: 1}})
	require.NoError(t, err)
	updateOne, err := operations.NewUpdateOneModel(criteria, update)
	require.NoError(t, err)
	updateOne.IsUpsert = true
	updateMany, err := operations.NewUpdateManyModel(criteria, update)
	require.NoError(t, err)
	replaceOne, err := operations.NewReplaceOneModel(criteria, bson.D{{Key: "status", Value: "fresh"}})
	require.NoError(t, err)
	removeOne, err := operations.NewRemoveOneModel(criteria)
	require.NoError(t, err)
	removeMany, err := operations.NewRemoveManyModel(criteria)
	require.NoError(t, err)

	tests := []struct {
		model        operations.WriteModel
		modelType    operations.WriteModelType
		expected     operations.WriteRequest
		expectedType operations.WriteRequestType
	}{
		{insertOne, operations.InsertOneModelType,
			&operations.InsertRequest{Document: bson.D{{Key: "a", Value: 1}}}, operations.InsertRequestType},
		{updateOne, operations.UpdateOneModelType,
			&operations.UpdateRequest{Criteria: criteria, Update: update, IsUpsert: true}, operations.UpdateRequestType},
		{updateMany, operations.UpdateManyModelType,
			&operations.UpdateRequest{Criteria: criteria, Update: update, IsMulti: true}, operations.UpdateRequestType},
		{replaceOne, operations.ReplaceOneModelType,
			&operations.UpdateRequest{Criteria: criteria, Update: bson.D{{Key: "status", Value: "fresh"}}, Kind: operations.UpdateKindReplacement}, operations.UpdateRequestType},
		{removeOne, operations.RemoveOneModelType,
			&operations.DeleteRequest{Criteria: criteria, Limit: 1}, operations.DeleteRequestType},
		{removeMany, operations.RemoveManyModelType,
			&operations.DeleteRequest{Criteria: criteria, Limit: 0}, operations.DeleteRequestType},
	}

	for _, test := range tests {
		assert.Equal(t, test.modelType, test.model.ModelType())

		request, err := operations.ToWriteRequest(test.model)
		require.NoError(t, err, "ToWriteRequest(%s)", test.modelType)
		assert.Equal(t, test.expected, request, "ToWriteRequest(%s)", test.modelType)
		assert.Equal(t, test.expectedType, request.RequestType())
	}
}

func TestToWriteRequestNilModel(t *testing.T) {
	_, err := operations.ToWriteRequest(nil)
	assert.ErrorIs(t, err, operations.ErrInvalidArgument)
}

func TestModelsRequireCriteria(t *testing.T) {
	_, err := operations.NewRemoveOneModel(nil)
	assert.ErrorIs(t, err, operations.ErrInvalidArgument)

	_, err = operations.NewRemoveManyModel(nil)
	assert.ErrorIs(t, err, operations.ErrInvalidArgument)

	_, err = operations.NewUpdateOneModel(nil, bson.D{})
	assert.ErrorIs(t, err, operations.ErrInvalidArgument)

	_, err = operations.NewReplaceOneModel(bson.D{}, nil)
	var argErr *operations.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "replacement", argErr.Param)

	_, err = operations.NewInsertOneModel(nil)
	assert.ErrorIs(t, err, operations.ErrInvalidArgument)
}

func TestRemoveModelCriteriaIsImmutable(t *testing.T) {
	criteria := bson.D{{Key: "status", Value: "stale"}}
	model, err := operations.NewRemoveManyModel(criteria)
	require.NoError(t, err)

	criteria[0].Value = "changed"
	got := model.Criteria()
	assert.Equal(t, "stale", got[0].Value)

	got[0].Value = "changed again"
	assert.Equal(t, "stale", model.Criteria()[0].Value)
}

func TestRemoveModelCriteriaCopiesNestedValues(t *testing.T) {
	ids := []string{"a", "b"}
	nested := bson.M{"$in": ids, "$exists": nil}
	criteria := bson.D{{Key: "_id", Value: nested}, {Key: "tags", Value: []interface{}{"x", nil}}}

	model, err := operations.NewRemoveManyModel(criteria)
	require.NoError(t, err)

	ids[0] = "z"
	nested["$nin"] = []string{"c"}
	criteria[1].Value.([]interface{})[0] = "y"

	expected := bson.D{
		{Key: "_id", Value: bson.M{"$in": []string{"a", "b"}, "$exists": nil}},
		{Key: "tags", Value: []interface{}{"x", nil}},
	}
	assert.Equal(t, expected, model.Criteria())
}
