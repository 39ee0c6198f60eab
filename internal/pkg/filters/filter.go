package filters

import (
	"strings"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/config"
)

func Lookup(items map[string]bool, item string) (bool, bool) {
	value := false
	found := false

	if len(items) == 0 {
		return value, found
	}

	value, found = items[item]
	return value, found
}

// ShouldRemoveFrom tells whether removes may target db.collection. An empty
// databasesIn allows every database.
func ShouldRemoveFrom(
	databasesIn map[string]bool,
	collectionsIn map[string]bool,
	collectionsOut map[string]bool,
	db string, collection string) bool {

	// If the database is not in the list of allowed databases, return false
	if len(databasesIn) > 0 {
		if _, found := databasesIn[db]; !found {
			return false
		}
	}

	// CollectionsIn get the precedence over CollectionsOut !
	if _, found := collectionsIn[collection]; found {
		return true
	}

	if _, found := collectionsOut[collection]; found {
		return false
	}

	return true
}

// Filter guards the namespaces legacy removes are allowed on.
type Filter struct {
	databasesIn    map[string]bool
	collectionsIn  map[string]bool
	collectionsOut map[string]bool
}

func NewFilter(databasesIn, collectionsIn, collectionsOut map[string]bool) *Filter {
	return &Filter{
		databasesIn:    databasesIn,
		collectionsIn:  collectionsIn,
		collectionsOut: collectionsOut,
	}
}

func NewFilterFromConfig(appConfig *config.AppConfig) *Filter {
	return NewFilter(
		appConfig.Emulation.DatabasesIn,
		appConfig.Emulation.FiltersIn,
		appConfig.Emulation.FiltersOut)
}

// Filter out unwanted namespaces. A nil filter keeps everything.
func (f *Filter) KeepCollection(db string, collection string) bool {

	db, collection = strings.TrimSpace(db), strings.TrimSpace(collection)
	if collection == "" || db == "" {
		return false
	}
	if f == nil {
		return true
	}

	return ShouldRemoveFrom(f.databasesIn, f.collectionsIn, f.collectionsOut, db, collection)
}
