package operations

type BulkWriteOutcomeKind int

const (
	BulkWriteSucceeded BulkWriteOutcomeKind = iota + 1
	BulkWritePartiallyFailed
)

func (k BulkWriteOutcomeKind) String() string {
	switch k {
	case BulkWriteSucceeded:
		return "succeeded"
	case BulkWritePartiallyFailed:
		return "partially_failed"
	default:
		return "invalid"
	}
}

// BulkWriteOutcome is what a connection hands back for a bulk write: either
// a success result or a partial result along with the failure detail.
// A server side write failure is a value here, not an error.
type BulkWriteOutcome struct {
	kind    BulkWriteOutcomeKind
	result  *BulkWriteOperationResult
	failure *BulkWriteFailure
}

func NewSucceededOutcome(result *BulkWriteOperationResult) BulkWriteOutcome {
	return BulkWriteOutcome{kind: BulkWriteSucceeded, result: result}
}

func NewPartialFailureOutcome(result *BulkWriteOperationResult, failure *BulkWriteFailure) BulkWriteOutcome {
	if failure == nil {
		failure = &BulkWriteFailure{}
	}
	return BulkWriteOutcome{kind: BulkWritePartiallyFailed, result: result, failure: failure}
}

func (o BulkWriteOutcome) Kind() BulkWriteOutcomeKind { return o.kind }

func (o BulkWriteOutcome) Result() *BulkWriteOperationResult { return o.result }

// Failure is nil unless the outcome is a partial failure.
func (o BulkWriteOutcome) Failure() *BulkWriteFailure { return o.failure }
