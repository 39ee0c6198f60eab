package operations

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// WriteConcernResult is the legacy getLastError shaped acknowledgement of a
// single write: {ok: 1, n: <affected>, err: ..., code: ..., ...}.
type WriteConcernResult struct {
	response bson.D
}

func NewWriteConcernResult(response bson.D) *WriteConcernResult {
	return &WriteConcernResult{response: response}
}

func (r *WriteConcernResult) Response() bson.D {
	return r.response
}

// Number of documents inserted, updated or removed
func (r *WriteConcernResult) DocumentsAffected() int64 {
	n, _ := toInt64(lookup(r.response, "n"))
	return n
}

func (r *WriteConcernResult) UpdatedExisting() bool {
	updated, _ := lookup(r.response, "updatedExisting").(bool)
	return updated
}

func (r *WriteConcernResult) Upserted() interface{} {
	return lookup(r.response, "upserted")
}

func (r *WriteConcernResult) HasLastErrorMessage() bool {
	msg, ok := lookup(r.response, "err").(string)
	return ok && msg != ""
}

func (r *WriteConcernResult) LastErrorMessage() string {
	msg, _ := lookup(r.response, "err").(string)
	return msg
}

func (r *WriteConcernResult) Code() (int, bool) {
	code, ok := toInt64(lookup(r.response, "code"))
	return int(code), ok
}

// WriteConcernError is raised when the server rejected, fully or partially,
// a write emulated through the bulk write path.
type WriteConcernError struct {
	Code    int
	Message string
	// Index of the failed request in the batch, -1 for a write concern failure
	Index  int
	Labels []string
	// Nil when the write was not acknowledged
	Result *WriteConcernResult
}

func (e *WriteConcernError) Error() string {
	return fmt.Sprintf("write concern error (code %d): %s", e.Code, e.Message)
}

func (e *WriteConcernError) HasErrorCode(code int) bool {
	return e.Code == code
}

// IsDuplicateKey reports the duplicate key family of server errors.
func (e *WriteConcernError) IsDuplicateKey() bool {
	// handles SERVER-7164 and SERVER-11493
	switch e.Code {
	case 11000, 11001, 12582:
		return true
	case 16460:
		return strings.Contains(e.Message, " E11000 ")
	}
	return false
}

func lookup(doc bson.D, key string) interface{} {
	for _, e := range doc {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
