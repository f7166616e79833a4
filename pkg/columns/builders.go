// Package columns implements the per-type, append-only column builders
// described in spec.md §4.2: one concrete Go type per target Arrow
// type, dispatched at column granularity (the variant is fixed for the
// whole builder's life, never re-decided per cell), wrapping the
// matching arrow-go array.Builder.
//
// This package is an adaptation of the teacher corpus's BatchReader
// value-append logic (appendValue/createScanDest/appendTimeValue in
// pkg/infrastructure/converter/batch_reader.go): the same "one builder,
// one fixed Go scan type, type-switch on append" shape, rebuilt around
// an explicit, closed Builder interface instead of a single giant
// switch over every SQL driver type.
package columns

import (
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"

	"github.com/TFMV/sqlvault/internal/xerrors"
	"github.com/TFMV/sqlvault/pkg/schema"
)

// Builder is the tagged-variant contract every concrete column builder
// satisfies. PushNull is intentionally unguarded by nullability here —
// that check belongs to NullableHolder (spec.md §4.2).
type Builder interface {
	// PushNull appends one null slot.
	PushNull()
	// PushValue appends one value. value's dynamic type must match the
	// builder's variant, or CodeTypeMismatch is returned.
	PushValue(value any) error
	// Len reports the number of slots appended so far.
	Len() int
	// Finish consumes the builder and returns an immutable array.
	Finish() arrow.Array
}

// New constructs the Builder matching desc.Target, backed by mem.
func New(mem memory.Allocator, desc schema.ColumnDescriptor) (Builder, error) {
	switch desc.SourceType {
	case schema.VarString:
		return &Utf8Builder{b: array.NewStringBuilder(mem)}, nil
	case schema.Long, schema.LongLong:
		if desc.Unsigned {
			return &UInt64Builder{b: array.NewUint64Builder(mem)}, nil
		}
		return &Int64Builder{b: array.NewInt64Builder(mem)}, nil
	case schema.Float:
		return &Float32Builder{b: array.NewFloat32Builder(mem)}, nil
	case schema.NewDecimal:
		dt := desc.Target.(*arrow.Decimal128Type)
		return &DecimalBuilder{b: array.NewDecimal128Builder(mem, dt), scale: dt.Scale}, nil
	case schema.Date:
		return &Date32Builder{b: array.NewDate32Builder(mem)}, nil
	case schema.DateTime:
		return &TimestampBuilder{b: array.NewTimestampBuilder(mem, desc.Target.(*arrow.TimestampType))}, nil
	default:
		return nil, xerrors.New(xerrors.CodeUnsupportedType, "no builder for this column's target type")
	}
}

// --- Utf8 ---

// Utf8Builder accepts byte buffers that must be valid UTF-8.
type Utf8Builder struct{ b *array.StringBuilder }

func (u *Utf8Builder) PushNull()   { u.b.AppendNull() }
func (u *Utf8Builder) Len() int    { return u.b.Len() }
func (u *Utf8Builder) Finish() arrow.Array {
	defer u.b.Release()
	return u.b.NewArray()
}

func (u *Utf8Builder) PushValue(value any) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a byte buffer for Utf8, got %T", value)
	}
	if !utf8.Valid(raw) {
		return xerrors.New(xerrors.CodeInvalidEncoding, "column value is not valid UTF-8")
	}
	u.b.Append(string(raw))
	return nil
}

// --- Int64 ---

// Int64Builder accepts a signed integer, stored as-is.
type Int64Builder struct{ b *array.Int64Builder }

func (i *Int64Builder) PushNull() { i.b.AppendNull() }
func (i *Int64Builder) Len() int  { return i.b.Len() }
func (i *Int64Builder) Finish() arrow.Array {
	defer i.b.Release()
	return i.b.NewArray()
}

func (i *Int64Builder) PushValue(value any) error {
	v, ok := asInt64(value)
	if !ok {
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a signed integer for Int64, got %T", value)
	}
	i.b.Append(v)
	return nil
}

// --- UInt64 ---

// UInt64Builder accepts a signed integer carrier and reinterprets its
// bit pattern as unsigned 64-bit — never clamps — because the MySQL
// driver narrows BIGINT UNSIGNED into a signed Go int64 carrier
// (spec.md §9).
type UInt64Builder struct{ b *array.Uint64Builder }

func (u *UInt64Builder) PushNull() { u.b.AppendNull() }
func (u *UInt64Builder) Len() int  { return u.b.Len() }
func (u *UInt64Builder) Finish() arrow.Array {
	defer u.b.Release()
	return u.b.NewArray()
}

func (u *UInt64Builder) PushValue(value any) error {
	switch v := value.(type) {
	case uint64:
		u.b.Append(v)
		return nil
	case int64:
		u.b.Append(uint64(v))
		return nil
	default:
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a signed integer for UInt64, got %T", value)
	}
}

// --- Float32 ---

// Float32Builder accepts a 32-bit float, stored as-is.
type Float32Builder struct{ b *array.Float32Builder }

func (f *Float32Builder) PushNull() { f.b.AppendNull() }
func (f *Float32Builder) Len() int  { return f.b.Len() }
func (f *Float32Builder) Finish() arrow.Array {
	defer f.b.Release()
	return f.b.NewArray()
}

func (f *Float32Builder) PushValue(value any) error {
	v, ok := value.(float32)
	if !ok {
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a float32 for Float32, got %T", value)
	}
	f.b.Append(v)
	return nil
}

// --- Decimal128(19, 2) ---

// DecimalBuilder accepts an ASCII decimal literal, rescales it to the
// builder's fixed scale using half-away-from-zero rounding, and emits
// the 128-bit signed mantissa.
type DecimalBuilder struct {
	b     *array.Decimal128Builder
	scale int32
}

func (d *DecimalBuilder) PushNull() { d.b.AppendNull() }
func (d *DecimalBuilder) Len() int  { return d.b.Len() }
func (d *DecimalBuilder) Finish() arrow.Array {
	defer d.b.Release()
	return d.b.NewArray()
}

var maxUnscaled19 = new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(schema.DecimalPrecision), nil), big.NewInt(1))

func (d *DecimalBuilder) PushValue(value any) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a byte buffer for Decimal128, got %T", value)
	}

	dec, err := decimal.NewFromString(string(raw))
	if err != nil {
		return xerrors.Wrap(err, xerrors.CodeDecimalParse, "malformed decimal literal")
	}
	// shopspring/decimal's Round uses half-away-from-zero, matching
	// spec.md §4.2's documented rounding contract.
	rescaled := dec.Round(int32(d.scale))
	unscaled := rescaled.Shift(d.scale).BigInt()

	abs := new(big.Int).Abs(unscaled)
	if abs.Cmp(maxUnscaled19) > 0 {
		return xerrors.New(xerrors.CodeDecimalParse, "decimal literal overflows Decimal128(19,2) after rescale")
	}

	d.b.Append(decimal128.FromBigInt(unscaled))
	return nil
}

// --- Date32 ---

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Date32Builder accepts a broken-down date and emits signed days since
// the Unix epoch. A non-midnight time of day is treated as an
// invariant violation (spec.md §9 Open Question: this core fails
// InvalidDate instead of silently truncating).
type Date32Builder struct{ b *array.Date32Builder }

func (d *Date32Builder) PushNull() { d.b.AppendNull() }
func (d *Date32Builder) Len() int  { return d.b.Len() }
func (d *Date32Builder) Finish() arrow.Array {
	defer d.b.Release()
	return d.b.NewArray()
}

func (d *Date32Builder) PushValue(value any) error {
	t, ok := value.(time.Time)
	if !ok {
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a time.Time for Date32, got %T", value)
	}
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return xerrors.New(xerrors.CodeInvalidDate, "DATE column value carried a non-midnight time component")
	}
	secs := t.Unix() - epoch.Unix()
	days := secs / 86400
	if secs%86400 < 0 {
		days--
	}
	d.b.Append(arrow.Date32(days))
	return nil
}

// --- TimestampMicros ---

// TimestampBuilder accepts a broken-down date-time and emits
// microseconds since the Unix epoch, proleptic Gregorian, no timezone.
type TimestampBuilder struct{ b *array.TimestampBuilder }

func (ts *TimestampBuilder) PushNull() { ts.b.AppendNull() }
func (ts *TimestampBuilder) Len() int  { return ts.b.Len() }
func (ts *TimestampBuilder) Finish() arrow.Array {
	defer ts.b.Release()
	return ts.b.NewArray()
}

func (ts *TimestampBuilder) PushValue(value any) error {
	t, ok := value.(time.Time)
	if !ok {
		return xerrors.Wrapf(nil, xerrors.CodeTypeMismatch, "expected a time.Time for TimestampMicros, got %T", value)
	}
	micros := (t.Unix()-epoch.Unix())*1_000_000 + int64(t.Nanosecond()/1000)
	ts.b.Append(arrow.Timestamp(micros))
	return nil
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	default:
		return 0, false
	}
}
