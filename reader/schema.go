package reader

import (
	"github.com/parquet-go/parquet-go"
)

// SchemaInfo represents metadata about a single top-level column in a
// Parquet file.
type SchemaInfo struct {
	Name         string `json:"name"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// schemaInfo lists the top-level fields of a schema in file order. Groups
// are reported with the GROUP physical type; their values are read as
// objects.
func schemaInfo(schema *parquet.Schema) []SchemaInfo {
	fields := schema.Fields()
	infos := make([]SchemaInfo, 0, len(fields))
	for _, field := range fields {
		infos = append(infos, SchemaInfo{
			Name:         field.Name(),
			PhysicalType: physicalType(field),
			LogicalType:  logicalType(field),
			Optional:     field.Optional(),
			Repeated:     field.Repeated(),
		})
	}
	return infos
}

// physicalType returns the physical type name of a Parquet field.
func physicalType(field parquet.Field) string {
	if field.Type() == nil || len(field.Fields()) > 0 {
		return "GROUP"
	}

	switch field.Type().Kind() {
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

// logicalType returns the logical type name of a Parquet field.
func logicalType(field parquet.Field) string {
	if field.Type() == nil || len(field.Fields()) > 0 {
		return ""
	}
	lt := field.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}

// ColumnType maps a parquet column to a dataset column type and subtype.
//
// Repeated columns and groups are hierarchies. Dates, times and
// timestamps are datetimes; timestamps are read as TimestampLayout
// strings. Integers, floats and decimals are numeric and everything else,
// strings and booleans included, is a hierarchy.
func ColumnType(info SchemaInfo) (columnType, subtype string) {
	if info.Repeated || info.PhysicalType == "GROUP" {
		return TypeHierarchy, ""
	}

	switch logicalPrefix(info.LogicalType) {
	case "DATE":
		return TypeDatetime, "date"
	case "TIME", "TIMESTAMP":
		return TypeDatetime, ""
	case "DECIMAL":
		return TypeNumeric, ""
	case "STRING", "UTF8", "ENUM", "UUID", "JSON", "BSON":
		return TypeHierarchy, ""
	}

	switch info.PhysicalType {
	case "INT32", "INT64", "FLOAT", "DOUBLE":
		return TypeNumeric, ""
	case "INT96":
		return TypeDatetime, ""
	default:
		return TypeHierarchy, ""
	}
}

// logicalPrefix strips parameters such as "(isAdjustedToUTC=true,...)"
// from a logical type name.
func logicalPrefix(s string) string {
	for i, r := range s {
		if r == '(' {
			return s[:i]
		}
	}
	return s
}

// ColumnsFromSchema derives column metadata from parquet schema info.
func ColumnsFromSchema(infos []SchemaInfo) []ColumnMeta {
	columns := make([]ColumnMeta, 0, len(infos))
	for _, info := range infos {
		columnType, subtype := ColumnType(info)
		columns = append(columns, ColumnMeta{
			ID:         info.Name,
			Name:       localized(info.Name),
			Type:       columnType,
			Subtype:    subtype,
			Properties: columnProperties(columnType),
		})
	}
	return columns
}
