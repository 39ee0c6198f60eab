package operations

import (
	"reflect"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
)

// cloneDocument copies a filter document with its nested documents, arrays
// and maps, keeping the Go types of the values.
func cloneDocument(doc bson.D) bson.D {
	if doc == nil {
		return nil
	}
	clone := make(bson.D, len(doc))
	for i, e := range doc {
		clone[i] = bson.E{Key: e.Key, Value: cloneValue(e.Value)}
	}
	return clone
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case bson.D:
		return cloneDocument(t)
	case bson.E:
		return bson.E{Key: t.Key, Value: cloneValue(t.Value)}
	case []byte:
		return slices.Clone(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		clone := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			setCloned(clone.Index(i), rv.Index(i))
		}
		return clone.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		clone := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			value := reflect.New(rv.Type().Elem()).Elem()
			setCloned(value, iter.Value())
			clone.SetMapIndex(iter.Key(), value)
		}
		return clone.Interface()
	default:
		return v
	}
}

// setCloned stores a copy of src into dst, a nil interface stays zero.
func setCloned(dst reflect.Value, src reflect.Value) {
	if src.Kind() == reflect.Interface && src.IsNil() {
		return
	}
	dst.Set(reflect.ValueOf(cloneValue(src.Interface())).Convert(dst.Type()))
}
