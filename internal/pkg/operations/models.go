package operations

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

type WriteModelType int

const (
	InsertOneModelType WriteModelType = iota + 1
	UpdateOneModelType
	UpdateManyModelType
	ReplaceOneModelType
	RemoveOneModelType
	RemoveManyModelType
)

func (t WriteModelType) String() string {
	switch t {
	case InsertOneModelType:
		return "insertOne"
	case UpdateOneModelType:
		return "updateOne"
	case UpdateManyModelType:
		return "updateMany"
	case ReplaceOneModelType:
		return "replaceOne"
	case RemoveOneModelType:
		return "removeOne"
	case RemoveManyModelType:
		return "removeMany"
	default:
		return "unknown"
	}
}

// WriteModel describes what a caller wants written. Models are plain data
// holders, ToWriteRequest turns them into bulk write requests.
type WriteModel interface {
	ModelType() WriteModelType
	writeModel()
}

type InsertOneModel struct {
	document interface{}
}

func NewInsertOneModel(document interface{}) (*InsertOneModel, error) {
	if document == nil {
		return nil, notNil("document")
	}
	return &InsertOneModel{document: document}, nil
}

func (m *InsertOneModel) Document() interface{} { return m.document }
func (*InsertOneModel) ModelType() WriteModelType { return InsertOneModelType }
func (*InsertOneModel) writeModel()               {}

// Shared by the update and replace models
type updateModel struct {
	criteria bson.D
	update   interface{}
	IsUpsert bool
}

func newUpdateModel(criteria bson.D, update interface{}, param string) (updateModel, error) {
	if criteria == nil {
		return updateModel{}, notNil("criteria")
	}
	if update == nil {
		return updateModel{}, notNil(param)
	}
	return updateModel{criteria: cloneDocument(criteria), update: update}, nil
}

func (m *updateModel) Criteria() bson.D { return cloneDocument(m.criteria) }

type UpdateOneModel struct {
	updateModel
}

func NewUpdateOneModel(criteria bson.D, update interface{}) (*UpdateOneModel, error) {
	u, err := newUpdateModel(criteria, update, "update")
	if err != nil {
		return nil, err
	}
	return &UpdateOneModel{u}, nil
}

func (m *UpdateOneModel) Update() interface{}     { return m.update }
func (*UpdateOneModel) ModelType() WriteModelType { return UpdateOneModelType }
func (*UpdateOneModel) writeModel()               {}

type UpdateManyModel struct {
	updateModel
}

func NewUpdateManyModel(criteria bson.D, update interface{}) (*UpdateManyModel, error) {
	u, err := newUpdateModel(criteria, update, "update")
	if err != nil {
		return nil, err
	}
	return &UpdateManyModel{u}, nil
}

func (m *UpdateManyModel) Update() interface{}     { return m.update }
func (*UpdateManyModel) ModelType() WriteModelType { return UpdateManyModelType }
func (*UpdateManyModel) writeModel()               {}

type ReplaceOneModel struct {
	updateModel
}

func NewReplaceOneModel(criteria bson.D, replacement interface{}) (*ReplaceOneModel, error) {
	u, err := newUpdateModel(criteria, replacement, "replacement")
	if err != nil {
		return nil, err
	}
	return &ReplaceOneModel{u}, nil
}

func (m *ReplaceOneModel) Replacement() interface{} { return m.update }
func (*ReplaceOneModel) ModelType() WriteModelType  { return ReplaceOneModelType }
func (*ReplaceOneModel) writeModel()                {}

// RemoveOneModel removes at most one document matching the criteria.
type RemoveOneModel struct {
	criteria bson.D
}

func NewRemoveOneModel(criteria bson.D) (*RemoveOneModel, error) {
	if criteria == nil {
		return nil, notNil("criteria")
	}
	return &RemoveOneModel{criteria: cloneDocument(criteria)}, nil
}

func (m *RemoveOneModel) Criteria() bson.D        { return cloneDocument(m.criteria) }
func (*RemoveOneModel) ModelType() WriteModelType { return RemoveOneModelType }
func (*RemoveOneModel) writeModel()               {}

// RemoveManyModel removes every document matching the criteria.
type RemoveManyModel struct {
	criteria bson.D
}

func NewRemoveManyModel(criteria bson.D) (*RemoveManyModel, error) {
	if criteria == nil {
		return nil, notNil("criteria")
	}
	return &RemoveManyModel{criteria: cloneDocument(criteria)}, nil
}

func (m *RemoveManyModel) Criteria() bson.D        { return cloneDocument(m.criteria) }
func (*RemoveManyModel) ModelType() WriteModelType { return RemoveManyModelType }
func (*RemoveManyModel) writeModel()               {}

// ToWriteRequest converts a model into the request understood by the bulk
// write path.
func ToWriteRequest(model WriteModel) (WriteRequest, error) {
	switch m := model.(type) {
	case nil:
		return nil, notNil("model")
	case *InsertOneModel:
		return &InsertRequest{Document: m.document}, nil
	case *UpdateOneModel:
		return &UpdateRequest{Criteria: m.Criteria(), Update: m.update, IsUpsert: m.IsUpsert}, nil
	case *UpdateManyModel:
		return &UpdateRequest{Criteria: m.Criteria(), Update: m.update, IsUpsert: m.IsUpsert, IsMulti: true}, nil
	case *ReplaceOneModel:
		return &UpdateRequest{Criteria: m.Criteria(), Update: m.update, IsUpsert: m.IsUpsert, Kind: UpdateKindReplacement}, nil
	case *RemoveOneModel:
		return &DeleteRequest{Criteria: m.Criteria(), Limit: RemovalLimit(false)}, nil
	case *RemoveManyModel:
		return &DeleteRequest{Criteria: m.Criteria(), Limit: RemovalLimit(true)}, nil
	default:
		return nil, newArgumentError("model", fmt.Sprintf("unsupported write model %T", model))
	}
}
