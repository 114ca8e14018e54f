package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Observer rewrites names found in query text before they reach the
// statement: FireEntity maps the source name and FireField maps attribute
// names of that source. Attribute names appear in projections, sort keys and
// condition leaves.
type Observer interface {
	FireEntity(entity string) string
	FireField(entity, field string) string
}

// NoopObserver returns every name unchanged
type NoopObserver struct{}

func (NoopObserver) FireEntity(entity string) string { return entity }

func (NoopObserver) FireField(_, field string) string { return field }

// MappingObserver rewrites names from static tables. Names without an entry
// pass through unchanged.
type MappingObserver struct {
	entities map[string]string
	fields   map[string]map[string]string
}

// NewMappingObserver creates an observer from entity and per-entity field
// mappings. Field mappings are keyed by the entity name as written in the
// query.
func NewMappingObserver(entities map[string]string, fields map[string]map[string]string) *MappingObserver {
	m := &MappingObserver{
		entities: make(map[string]string, len(entities)),
		fields:   make(map[string]map[string]string, len(fields)),
	}
	for k, v := range entities {
		m.entities[k] = v
	}
	for entity, mapping := range fields {
		copied := make(map[string]string, len(mapping))
		for k, v := range mapping {
			copied[k] = v
		}
		m.fields[entity] = copied
	}
	return m
}

func (m *MappingObserver) FireEntity(entity string) string {
	if mapped, ok := m.entities[entity]; ok {
		return mapped
	}
	return entity
}

func (m *MappingObserver) FireField(entity, field string) string {
	if mapped, ok := m.fields[entity][field]; ok {
		return mapped
	}
	return field
}

// mappingFile is the YAML layout read by LoadMappingObserver:
//
//	entities:
//	  God: gods
//	fields:
//	  God:
//	    name: god_name
type mappingFile struct {
	Entities map[string]string            `yaml:"entities"`
	Fields   map[string]map[string]string `yaml:"fields"`
}

// ParseMappingObserver decodes a YAML mapping document
func ParseMappingObserver(data []byte) (*MappingObserver, error) {
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}
	return NewMappingObserver(f.Entities, f.Fields), nil
}

// LoadMappingObserver reads a YAML mapping file
func LoadMappingObserver(path string) (*MappingObserver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}
	return ParseMappingObserver(data)
}
