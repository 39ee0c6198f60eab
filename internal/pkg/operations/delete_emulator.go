package operations

import (
	"context"
	"time"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// DeleteOpcodeOperationEmulator executes a legacy OP_DELETE style request
// through the bulk write path and reports the result the way the legacy
// protocol did.
//
// An emulator is meant for a single caller: IsMulti and WriteConcern may be
// changed before Execute, not while it runs.
type DeleteOpcodeOperationEmulator struct {
	collectionNamespace    *CollectionNamespace
	criteria               bson.D
	isMulti                bool
	messageEncoderSettings *MessageEncoderSettings
	writeConcern           *writeconcern.WriteConcern
}

func NewDeleteOpcodeOperationEmulator(collectionNamespace *CollectionNamespace, criteria bson.D,
	messageEncoderSettings *MessageEncoderSettings) (*DeleteOpcodeOperationEmulator, error) {

	if collectionNamespace == nil {
		return nil, notNil("collectionNamespace")
	}
	if criteria == nil {
		return nil, notNil("criteria")
	}

	return &DeleteOpcodeOperationEmulator{
		collectionNamespace:    collectionNamespace,
		criteria:               cloneDocument(criteria),
		messageEncoderSettings: messageEncoderSettings,
		writeConcern:           writeconcern.W1(),
	}, nil
}

func (e *DeleteOpcodeOperationEmulator) CollectionNamespace() *CollectionNamespace {
	return e.collectionNamespace
}

func (e *DeleteOpcodeOperationEmulator) Criteria() bson.D {
	return cloneDocument(e.criteria)
}

func (e *DeleteOpcodeOperationEmulator) IsMulti() bool {
	return e.isMulti
}

func (e *DeleteOpcodeOperationEmulator) SetMulti(isMulti bool) {
	e.isMulti = isMulti
}

func (e *DeleteOpcodeOperationEmulator) MessageEncoderSettings() *MessageEncoderSettings {
	return e.messageEncoderSettings
}

func (e *DeleteOpcodeOperationEmulator) WriteConcern() *writeconcern.WriteConcern {
	return e.writeConcern
}

func (e *DeleteOpcodeOperationEmulator) SetWriteConcern(writeConcern *writeconcern.WriteConcern) error {
	if writeConcern == nil {
		return notNil("writeConcern")
	}
	e.writeConcern = writeConcern
	return nil
}

// Execute runs the delete over conn.
//
// It returns the legacy result when the write concern is acknowledged and
// nil when it is not. A write rejected by the server is returned as a
// *WriteConcernError whatever the write concern. Any other error (argument,
// transport, cancellation, timeout) is returned as is.
func (e *DeleteOpcodeOperationEmulator) Execute(ctx context.Context, conn Connection, timeout time.Duration) (*WriteConcernResult, error) {
	if conn == nil {
		return nil, notNil("connection")
	}

	request, err := e.deleteRequest()
	if err != nil {
		return nil, err
	}

	operation, err := NewBulkDeleteOperation(e.collectionNamespace, []*DeleteRequest{request}, e.messageEncoderSettings)
	if err != nil {
		return nil, err
	}
	if err := operation.SetWriteConcern(e.writeConcern); err != nil {
		return nil, err
	}

	if log.IsDebug() {
		log.DebugWithFields("emulating delete opcode", log.Fields{
			"ns":           e.collectionNamespace.FullName(),
			"limit":        request.Limit,
			"acknowledged": e.writeConcern.Acknowledged(),
		})
	}

	outcome, err := operation.Execute(ctx, conn, timeout)
	if err != nil {
		return nil, err
	}
	return translateOutcome(outcome, e.writeConcern)
}

// The limit is resolved from the multi flag as it stands now
func (e *DeleteOpcodeOperationEmulator) deleteRequest() (*DeleteRequest, error) {
	var model WriteModel
	var err error
	if e.isMulti {
		model, err = NewRemoveManyModel(e.criteria)
	} else {
		model, err = NewRemoveOneModel(e.criteria)
	}
	if err != nil {
		return nil, err
	}

	request, err := ToWriteRequest(model)
	if err != nil {
		return nil, err
	}
	return request.(*DeleteRequest), nil
}

// translateOutcome always surfaces a failure, even for an unacknowledged
// write, since it was observed during this call.
func translateOutcome(outcome BulkWriteOutcome, writeConcern *writeconcern.WriteConcern) (*WriteConcernResult, error) {
	converter := BulkWriteOperationResultConverter{}

	switch outcome.Kind() {
	case BulkWritePartiallyFailed:
		return nil, converter.ToWriteConcernError(outcome.Result(), outcome.Failure())
	case BulkWriteSucceeded:
		if writeConcern.Acknowledged() {
			return converter.ToWriteConcernResult(outcome.Result()), nil
		}
		return nil, nil
	default:
		return nil, ErrInvalidOutcome
	}
}
