package operations

import (
	"strings"
)

// CollectionNamespace identifies a collection inside a database.
type CollectionNamespace struct {
	databaseName   string
	collectionName string
}

func NewCollectionNamespace(database string, collection string) (*CollectionNamespace, error) {
	if database == "" {
		return nil, newArgumentError("database", "must not be empty")
	}
	if strings.ContainsAny(database, "./\\ \"$") {
		return nil, newArgumentError("database", "contains an invalid character")
	}
	if collection == "" {
		return nil, newArgumentError("collection", "must not be empty")
	}
	return &CollectionNamespace{
		databaseName:   database,
		collectionName: collection,
	}, nil
}

// ParseCollectionNamespace splits a full name on its first dot, the
// collection part may itself contain dots.
func ParseCollectionNamespace(fullName string) (*CollectionNamespace, error) {
	database, collection, found := strings.Cut(fullName, ".")
	if !found {
		return nil, newArgumentError("fullName", "expected <database>.<collection>")
	}
	return NewCollectionNamespace(database, collection)
}

func (ns *CollectionNamespace) DatabaseName() string {
	return ns.databaseName
}

func (ns *CollectionNamespace) CollectionName() string {
	return ns.collectionName
}

func (ns *CollectionNamespace) FullName() string {
	return ns.databaseName + "." + ns.collectionName
}

func (ns *CollectionNamespace) String() string {
	return ns.FullName()
}
