package mdb

import (
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/config"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
)

type MongoRegistry struct {
	target *MDB
}

func NewMongoRegistry(appConfig *config.AppConfig) *MongoRegistry {
	return &MongoRegistry{
		target: NewMongo(appConfig.Mongo.Target),
	}
}

var Registry *MongoRegistry = nil

func (m *MongoRegistry) GetTarget() *MDB {

	if m.target == nil {
		log.Fatal("target is nil")
	}
	return m.target
}
