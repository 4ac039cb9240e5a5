package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists the "db" tags of T, descending into embedded
// structs such as entity.BaseEntity. Called once per repository at wiring
// time.
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	return meta.columns()
}

type fieldMeta struct {
	index []int
	tag   string
}

type structMeta struct {
	fields []fieldMeta
}

func (m *structMeta) columns() []string {
	cols := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		cols = append(cols, f.tag)
	}
	return cols
}

var metaCache sync.Map // reflect.Type -> *structMeta

func metadataFor(t reflect.Type) *structMeta {
	if t == nil {
		return &structMeta{}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*structMeta)
	}

	meta := &structMeta{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	actual, _ := metaCache.LoadOrStore(t, meta)
	return actual.(*structMeta)
}

func collectFields(t reflect.Type, prefix []int, meta *structMeta) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, idx, meta)
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldMeta{index: idx, tag: tag})
	}
}

// StructToMap converts a struct (or pointer to one) to column -> value using
// its "db" tags. Field metadata is cached per type.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.tag] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}
