package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/config"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/filters"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/metrics"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	StatusAcknowledged   = "acknowledged"
	StatusUnacknowledged = "unacknowledged"
	StatusWriteError     = "write_error"
	StatusInvalid        = "invalid"
	StatusFiltered       = "filtered"
	StatusAborted        = "aborted"
	StatusError          = "error"
)

// ConnectionProvider hands out the connection a remove is executed on.
type ConnectionProvider func(ctx context.Context) (operations.Connection, error)

type RemoveOptions struct {
	// Used when the request does not name one
	DefaultWriteConcern *writeconcern.WriteConcern
	Timeout             time.Duration
	AllowUnacknowledged bool
	EncoderSettings     *operations.MessageEncoderSettings
	// Namespaces removes may target, nil allows all of them
	Filter              *filters.Filter
}

// RemoveRequest is the legacy OP_DELETE message. Criteria is extended JSON.
type RemoveRequest struct {
	Database     string          `json:"database" binding:"required"`
	Collection   string          `json:"collection" binding:"required"`
	Criteria     json.RawMessage `json:"criteria" binding:"required"`
	Multi        bool            `json:"multi"`
	WriteConcern string          `json:"writeConcern"`
	TimeoutMs    int64           `json:"timeoutMs"`
}

type RemoveApi struct {
	connections ConnectionProvider
	options     RemoveOptions
}

func NewRemoveApi(connections ConnectionProvider, options RemoveOptions) *RemoveApi {
	if options.DefaultWriteConcern == nil {
		options.DefaultWriteConcern = writeconcern.W1()
	}
	return &RemoveApi{
		connections: connections,
		options:     options,
	}
}

func (a *RemoveApi) Remove(c *gin.Context) {

	var req RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.reject(c, req.Database, req.Collection, http.StatusBadRequest, err)
		return
	}

	ns, err := operations.NewCollectionNamespace(req.Database, req.Collection)
	if err != nil {
		a.reject(c, req.Database, req.Collection, http.StatusBadRequest, err)
		return
	}
	db, coll := ns.DatabaseName(), ns.CollectionName()

	if !a.options.Filter.KeepCollection(db, coll) {
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusFiltered).Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "removes are not allowed on " + ns.FullName()})
		return
	}

	var criteria bson.D
	if err := bson.UnmarshalExtJSON(req.Criteria, false, &criteria); err != nil {
		a.reject(c, db, coll, http.StatusBadRequest, errors.Wrap(err, "invalid criteria"))
		return
	}
	if criteria == nil {
		criteria = bson.D{}
	}

	wc := a.options.DefaultWriteConcern
	if req.WriteConcern != "" {
		if wc, err = config.ParseWriteConcern(req.WriteConcern); err != nil {
			a.reject(c, db, coll, http.StatusBadRequest, err)
			return
		}
	}
	if !wc.Acknowledged() && !a.options.AllowUnacknowledged {
		a.reject(c, db, coll, http.StatusForbidden, errors.New("unacknowledged removes are disabled"))
		return
	}

	timeout := a.options.Timeout
	if req.TimeoutMs < 0 {
		a.reject(c, db, coll, http.StatusBadRequest, errors.New("timeoutMs must not be negative"))
		return
	} else if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}

	emulator, err := operations.NewDeleteOpcodeOperationEmulator(ns, criteria, a.options.EncoderSettings)
	if err != nil {
		a.reject(c, db, coll, http.StatusBadRequest, err)
		return
	}
	emulator.SetMulti(req.Multi)
	if err := emulator.SetWriteConcern(wc); err != nil {
		a.reject(c, db, coll, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	conn, err := a.connections(ctx)
	if err != nil {
		log.ErrorWithFields("no connection available", log.Fields{"ns": ns.FullName(), "err": err})
		a.reject(c, db, coll, http.StatusServiceUnavailable, err)
		return
	}

	start := time.Now()
	result, err := emulator.Execute(ctx, conn, timeout)
	metrics.RemoveDuration.WithLabelValues(db, coll).Observe(time.Since(start).Seconds())

	if err != nil {
		a.fail(c, ns, err)
		return
	}

	if result == nil {
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusUnacknowledged).Inc()
		c.JSON(http.StatusAccepted, gin.H{"ok": 1, "acknowledged": false})
		return
	}

	body, err := bson.MarshalExtJSON(result.Response(), false, false)
	if err != nil {
		a.reject(c, db, coll, http.StatusInternalServerError, err)
		return
	}
	metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusAcknowledged).Inc()
	metrics.RemovedDocumentsCounter.WithLabelValues(db, coll).Add(float64(result.DocumentsAffected()))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (a *RemoveApi) fail(c *gin.Context, ns *operations.CollectionNamespace, err error) {
	db, coll := ns.DatabaseName(), ns.CollectionName()

	var wcErr *operations.WriteConcernError
	switch {
	case errors.As(err, &wcErr):
		log.WarnWithFields("remove rejected by the server", log.Fields{
			"ns":    ns.FullName(),
			"code":  wcErr.Code,
			"index": wcErr.Index,
		})
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusWriteError).Inc()
		c.JSON(http.StatusConflict, writeConcernErrorBody(wcErr))
	case errors.Is(err, operations.ErrInvalidArgument):
		a.reject(c, db, coll, http.StatusBadRequest, err)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusAborted).Inc()
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusAborted).Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.ErrorWithFields("remove failed", log.Fields{"ns": ns.FullName(), "err": err})
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, StatusError).Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	}
}

func (a *RemoveApi) reject(c *gin.Context, db, coll string, status int, err error) {
	label := StatusInvalid
	if status >= http.StatusInternalServerError {
		label = StatusError
	}
	if db != "" && coll != "" {
		metrics.RemoveRequestCounter.WithLabelValues(db, coll, label).Inc()
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func writeConcernErrorBody(wcErr *operations.WriteConcernError) gin.H {
	body := gin.H{
		"code":         wcErr.Code,
		"message":      wcErr.Message,
		"index":        wcErr.Index,
		"duplicateKey": wcErr.IsDuplicateKey(),
	}
	if len(wcErr.Labels) > 0 {
		body["labels"] = wcErr.Labels
	}
	if wcErr.Result != nil {
		if raw, err := bson.MarshalExtJSON(wcErr.Result.Response(), false, false); err == nil {
			body["result"] = json.RawMessage(raw)
		}
	}
	return body
}
