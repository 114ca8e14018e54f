package store

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// SchemaInfo describes one leaf column of a parquet file
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// ExtractSchemaInfo lists the leaf columns of a parquet file. Nested fields
// use dot notation ("address.city"), which is also how conditions address
// them.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = reader.Close() }()

	var infos []SchemaInfo
	for _, field := range reader.Schema().Fields() {
		infos = append(infos, fieldInfo(field, "", false)...)
	}
	return infos, nil
}

// fieldInfo walks field, propagating the repeated flag of parent groups
func fieldInfo(field parquet.Field, prefix string, parentRepeated bool) []SchemaInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var infos []SchemaInfo
		for _, child := range children {
			infos = append(infos, fieldInfo(child, name, repeated)...)
		}
		return infos
	}

	return []SchemaInfo{{
		Name:         name,
		Type:         friendlyType(field),
		PhysicalType: physicalType(field),
		LogicalType:  logicalType(field),
		Required:     field.Required(),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}}
}

func kindName(kind parquet.Kind) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	return kindName(field.Type().Kind())
}

func logicalType(field parquet.Field) string {
	if field.Type() == nil || field.Type().LogicalType() == nil {
		return ""
	}
	return field.Type().LogicalType().String()
}

// friendlyType names a column the way convert(value, type) names types
func friendlyType(field parquet.Field) string {
	if field.Type() == nil {
		return "group"
	}

	// logical types may carry parameters, e.g. TIMESTAMP(isAdjustedToUTC=true,unit=MILLIS)
	logical := logicalType(field)
	switch {
	case strings.HasPrefix(logical, "STRING"), strings.HasPrefix(logical, "UTF8"),
		strings.HasPrefix(logical, "ENUM"), strings.HasPrefix(logical, "JSON"):
		return "string"
	case strings.HasPrefix(logical, "UUID"):
		return "uuid"
	case strings.HasPrefix(logical, "DATE"):
		return "date"
	case strings.HasPrefix(logical, "TIME"):
		return "time"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "bool"
	case parquet.Int32:
		return "int32"
	case parquet.Int64:
		return "int64"
	case parquet.Float:
		return "float32"
	case parquet.Double:
		return "float64"
	default:
		return kindName(field.Type().Kind())
	}
}
