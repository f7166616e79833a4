package reader

import (
	"database/sql"
	"strings"

	"github.com/TFMV/sqlvault/internal/xerrors"
	"github.com/TFMV/sqlvault/pkg/schema"
)

// deriveMeta reads one column's name, type tag, and unsigned/nullable
// flags off the driver's reported metadata. go-sql-driver/mysql reports
// unsigned numeric columns with a " UNSIGNED" suffix on
// DatabaseTypeName(), so the suffix is stripped before the name is
// matched against our closed source-type set (spec.md §4.1, this
// core's documented fallback path).
func deriveMeta(ct *sql.ColumnType) schema.SourceColumnMeta {
	typeName := ct.DatabaseTypeName()
	unsigned := strings.HasSuffix(typeName, " UNSIGNED")
	typeName = strings.TrimSuffix(typeName, " UNSIGNED")

	nullable, ok := ct.Nullable()
	if !ok {
		// Driver didn't report nullability; assume nullable, the
		// conservative choice (a false NonNullableNull rejection is
		// worse than an unneeded null check).
		nullable = true
	}

	return schema.SourceColumnMeta{
		Name:       ct.Name(),
		SourceType: schema.SourceTypeFromMySQLTypeName(typeName),
		Unsigned:   unsigned,
		Nullable:   nullable,
	}
}

// scanDest allocates the driver-native Go scan destination matching
// desc's source type, mirroring the teacher's createScanDest. Every
// destination is a nullable carrier (sql.RawBytes for text-bearing
// types, sql.NullXxx for MySQL client library numeric/time wrappers) so
// one shape handles both the nullable and non-nullable case uniformly;
// NullableHolder is the only place that rejects a NULL for a
// non-nullable column.
func scanDest(desc schema.ColumnDescriptor) any {
	switch desc.SourceType {
	case schema.VarString:
		return &sql.RawBytes{}
	case schema.Long, schema.LongLong:
		return &sql.NullInt64{}
	case schema.Float:
		return &sql.NullFloat64{}
	case schema.NewDecimal:
		return &sql.RawBytes{}
	case schema.Date, schema.DateTime:
		return &sql.NullTime{}
	default:
		return &sql.RawBytes{}
	}
}

// cellValue extracts the value to push through a NullableHolder from a
// scanned destination, or columns.NullValue-equivalent nil when the
// cell is SQL NULL. The caller (readLoop) maps nil to columns.NullValue.
func cellValue(desc schema.ColumnDescriptor, dest any) (any, error) {
	switch desc.SourceType {
	case schema.VarString, schema.NewDecimal:
		raw := dest.(*sql.RawBytes)
		if *raw == nil {
			return nil, nil
		}
		cp := append([]byte(nil), *raw...)
		return cp, nil
	case schema.Long, schema.LongLong:
		v := dest.(*sql.NullInt64)
		if !v.Valid {
			return nil, nil
		}
		return v.Int64, nil
	case schema.Float:
		v := dest.(*sql.NullFloat64)
		if !v.Valid {
			return nil, nil
		}
		return float32(v.Float64), nil
	case schema.Date, schema.DateTime:
		v := dest.(*sql.NullTime)
		if !v.Valid {
			return nil, nil
		}
		return v.Time, nil
	default:
		return nil, xerrors.New(xerrors.CodeUnsupportedType, "no cell extraction for this column's source type")
	}
}
