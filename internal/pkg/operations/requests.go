package operations

import (
	"go.mongodb.org/mongo-driver/bson"
)

type WriteRequestType int

const (
	InsertRequestType WriteRequestType = iota + 1
	UpdateRequestType
	DeleteRequestType
)

func (t WriteRequestType) String() string {
	switch t {
	case InsertRequestType:
		return "insert"
	case UpdateRequestType:
		return "update"
	case DeleteRequestType:
		return "delete"
	default:
		return "unknown"
	}
}

// WriteRequest is one item of a generalized bulk write. The set of
// implementations is closed: InsertRequest, UpdateRequest and DeleteRequest.
type WriteRequest interface {
	RequestType() WriteRequestType
	writeRequest()
}

type InsertRequest struct {
	Document interface{}
}

func (*InsertRequest) RequestType() WriteRequestType { return InsertRequestType }
func (*InsertRequest) writeRequest()                 {}

type UpdateKind int

const (
	// The update holds operators ($set, $unset...)
	UpdateKindUpdate UpdateKind = iota
	// The update is a whole replacement document
	UpdateKindReplacement
)

type UpdateRequest struct {
	Criteria bson.D
	Update   interface{}
	Kind     UpdateKind
	IsMulti  bool
	IsUpsert bool
}

func (*UpdateRequest) RequestType() WriteRequestType { return UpdateRequestType }
func (*UpdateRequest) writeRequest()                 {}

// DeleteRequest removes the documents matching Criteria. A Limit of 0
// removes every match, a Limit of 1 removes at most one document.
type DeleteRequest struct {
	Criteria bson.D
	Limit    int
}

func NewDeleteRequest(criteria bson.D) *DeleteRequest {
	return &DeleteRequest{
		Criteria: criteria,
		Limit:    1,
	}
}

func (*DeleteRequest) RequestType() WriteRequestType { return DeleteRequestType }
func (*DeleteRequest) writeRequest()                 {}

// RemovalLimit maps the legacy multi flag onto a delete limit.
func RemovalLimit(isMulti bool) int {
	if isMulti {
		return 0
	}
	return 1
}
