package domain

import (
	"fmt"
	"maps"
	"slices"
)

// MetaSchema declares the metadata keys an entity accepts and their default
// values. Keys outside the schema are rejected.
type MetaSchema struct {
	defaults map[string]string
}

// NewMetaSchema declares keys with empty defaults.
func NewMetaSchema(keys ...string) *MetaSchema {
	s := &MetaSchema{defaults: make(map[string]string, len(keys))}
	for _, k := range keys {
		s.defaults[k] = ""
	}
	return s
}

// WithDefault returns s with key declared and defaulting to value.
func (s *MetaSchema) WithDefault(key, value string) *MetaSchema {
	s.defaults[key] = value
	return s
}

func (s *MetaSchema) Has(key string) bool {
	_, ok := s.defaults[key]
	return ok
}

// Keys returns the declared keys in sorted order.
func (s *MetaSchema) Keys() []string {
	return slices.Sorted(maps.Keys(s.defaults))
}

// New returns a Meta populated with the schema defaults.
func (s *MetaSchema) New() Meta {
	return Meta{schema: s, values: maps.Clone(s.defaults)}
}

// Meta is a schema-checked string map.
type Meta struct {
	schema *MetaSchema
	values map[string]string
}

// Set stores value under key. It fails with ErrUnknownMetaKey when the key
// is not declared.
func (m *Meta) Set(key, value string) error {
	if m.schema == nil || !m.schema.Has(key) {
		return fmt.Errorf("%w: %q", ErrUnknownMetaKey, key)
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m Meta) Get(key string) string {
	return m.values[key]
}

// Keys returns the declared keys in sorted order.
func (m Meta) Keys() []string {
	if m.schema == nil {
		return nil
	}
	return m.schema.Keys()
}

// Values returns a copy of every declared key and its current value.
func (m Meta) Values() map[string]string {
	return maps.Clone(m.values)
}

// Load copies stored values into m, skipping keys the schema does not declare.
func (m *Meta) Load(stored map[string]string) {
	for k, v := range stored {
		_ = m.Set(k, v)
	}
}
