package postgres

import (
	"reflect"
	"sync"
)

// typeMetadata holds the db-tagged field paths of a struct type.
type typeMetadata struct {
	columns []string
	paths   [][]int
}

// typeCache maps reflect.Type to *typeMetadata.
var typeCache sync.Map

func metadataFor(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	typeCache.Store(t, meta)
	return meta
}

// collectFields walks embedded structs (entity.Audit, entity.SoftDelete) recursively.
func collectFields(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, path, meta)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.columns = append(meta.columns, tag)
		meta.paths = append(meta.paths, path)
	}
}

// ExtractDBColumns extracts all column names from struct "db" tags, in field order.
//
//	columns := ExtractDBColumns[repair.RepairOrder]()
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	return append([]string(nil), meta.columns...)
}

// StructToMap converts a struct to a map keyed by "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.columns))
	for i, col := range meta.columns {
		res[col] = rv.FieldByIndex(meta.paths[i]).Interface()
	}
	return res
}

// Without returns cols minus the excluded names.
func Without(cols []string, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := skip[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Pick returns the subset of data for cols, preserving cols order in the result keys.
func Pick(data map[string]any, cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		if v, ok := data[c]; ok {
			out[c] = v
		}
	}
	return out
}
