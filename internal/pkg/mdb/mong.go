package mdb

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/config"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MDB struct {
	Uri    string
	mu     sync.Mutex
	client *mongo.Client
}

// NewMongo returns a new Mongo struct, the connection is opened on first use
func NewMongo(uri string) *MDB {
	return &MDB{
		Uri:    uri,
		client: nil,
	}
}

func (mdb *MDB) GetClient(ctx context.Context) (*mongo.Client, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if mdb.client != nil && mdb.isOk(ctx) {
		return mdb.client, nil
	}
	client, err := mdb.connect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to the server")
	}
	log.Info("successfully connected to the server ", config.ObfuscateCrendentials(mdb.Uri))
	mdb.client = client
	return mdb.client, nil
}

// Connection returns a connection borrowing the shared client.
func (mdb *MDB) Connection(ctx context.Context) (*Connection, error) {
	client, err := mdb.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewConnection(client), nil
}

func (mdb *MDB) Ping(ctx context.Context) error {
	client, err := mdb.GetClient(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, nil)
}

func (mdb *MDB) Disconnect(ctx context.Context) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if mdb.client == nil {
		return nil
	}
	err := mdb.client.Disconnect(ctx)
	mdb.client = nil
	return err
}

func (mdb *MDB) isOk(ctx context.Context) bool {
	if err := mdb.client.Ping(ctx, nil); err != nil {
		return false
	}
	return true
}

// Connect to the MongoDB server
func (mdb *MDB) connect(ctx context.Context) (*mongo.Client, error) {
	connectOpts := options.Client().ApplyURI(mdb.Uri)
	client, err := mongo.Connect(ctx, connectOpts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// IsDuplicateKeyError checks if the error is a duplicate key error
func IsDuplicateKeyError(err error) bool {
	// handles SERVER-7164 and SERVER-11493
	for ; err != nil; err = unwrap(err) {
		if e, ok := err.(mongo.ServerError); ok {
			return e.HasErrorCode(11000) || e.HasErrorCode(11001) || e.HasErrorCode(12582) ||
				e.HasErrorCodeWithMessage(16460, " E11000 ")
		}
	}
	return false
}

// unwrap the error
func unwrap(err error) error {
	u, ok := err.(interface {
		Unwrap() error
	})
	if !ok {
		return nil
	}
	return u.Unwrap()
}
