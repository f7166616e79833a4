// Package schema maps MySQL source-column metadata onto the closed set
// of Arrow logical types sqlvault writes, per spec.md §4.1.
package schema

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/sqlvault/internal/xerrors"
)

// SourceType is the small, closed set of MySQL column type codes the
// reader pipeline recognizes, read off sql.ColumnType.DatabaseTypeName()
// (see spec.md SPEC_FULL §4.1 for the exact name-to-code mapping).
type SourceType int

const (
	Unsupported SourceType = iota
	VarString
	Long
	LongLong
	Float
	NewDecimal
	Date
	DateTime
)

// SourceColumnMeta describes one source column exactly as read from the
// driver at query-open time. Immutable once constructed.
type SourceColumnMeta struct {
	Name       string
	SourceType SourceType
	Unsigned   bool
	Nullable   bool
}

// ColumnDescriptor is the derived, immutable per-column description
// shared by the schema and every builder built against it.
type ColumnDescriptor struct {
	Name       string
	SourceType SourceType
	Unsigned   bool
	Nullable   bool
	Target     arrow.DataType
}

// DecimalPrecision and DecimalScale are the hard-coded contract for
// every NEWDECIMAL column (spec.md §9, Open Question: precision/scale
// are not derived from source metadata in this core).
const (
	DecimalPrecision = 19
	DecimalScale     = 2
)

var decimal128Type = &arrow.Decimal128Type{Precision: DecimalPrecision, Scale: DecimalScale}

// DeriveTargetType implements the table in spec.md §4.1.
func DeriveTargetType(source SourceType, unsigned bool) (arrow.DataType, error) {
	switch source {
	case VarString:
		return arrow.BinaryTypes.String, nil
	case Long, LongLong:
		if unsigned {
			return arrow.PrimitiveTypes.Uint64, nil
		}
		return arrow.PrimitiveTypes.Int64, nil
	case Float:
		return arrow.PrimitiveTypes.Float32, nil
	case NewDecimal:
		return decimal128Type, nil
	case Date:
		return arrow.FixedWidthTypes.Date32, nil
	case DateTime:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, xerrors.New(xerrors.CodeUnsupportedType, "no target type mapping for this source column type")
	}
}

// DeriveField builds the ColumnDescriptor and Arrow field for one
// source column. Nullability is copied from meta.Nullable, which already
// holds the inverse of the source's NOT NULL flag: a "not null = true"
// column arrives with Nullable false and yields a non-nullable field.
func DeriveField(meta SourceColumnMeta) (ColumnDescriptor, error) {
	target, err := DeriveTargetType(meta.SourceType, meta.Unsigned)
	if err != nil {
		return ColumnDescriptor{}, err
	}
	return ColumnDescriptor{
		Name:       meta.Name,
		SourceType: meta.SourceType,
		Unsigned:   meta.Unsigned,
		Nullable:   meta.Nullable,
		Target:     target,
	}, nil
}

// Build derives a full ordered Schema (Arrow schema plus descriptors)
// from the source column metadata for one table, in column order.
func Build(metas []SourceColumnMeta) (*arrow.Schema, []ColumnDescriptor, error) {
	fields := make([]arrow.Field, len(metas))
	descriptors := make([]ColumnDescriptor, len(metas))
	for i, meta := range metas {
		desc, err := DeriveField(meta)
		if err != nil {
			return nil, nil, err
		}
		descriptors[i] = desc
		fields[i] = arrow.Field{Name: desc.Name, Type: desc.Target, Nullable: desc.Nullable}
	}
	return arrow.NewSchema(fields, nil), descriptors, nil
}

// SourceTypeFromMySQLTypeName maps the DatabaseTypeName() a
// go-sql-driver/mysql *sql.ColumnType reports onto our closed SourceType
// set. Unrecognized names return Unsupported, which DeriveTargetType
// turns into a CodeUnsupportedType error at the call site.
func SourceTypeFromMySQLTypeName(name string) SourceType {
	switch name {
	case "VARCHAR", "CHAR", "TEXT", "VAR_STRING":
		return VarString
	case "INT", "INTEGER", "MEDIUMINT":
		return Long
	case "BIGINT":
		return LongLong
	case "FLOAT":
		return Float
	case "DECIMAL":
		return NewDecimal
	case "DATE":
		return Date
	case "DATETIME", "TIMESTAMP":
		return DateTime
	default:
		return Unsupported
	}
}
