package columns

import "github.com/TFMV/sqlvault/internal/xerrors"

// NullValue is the sentinel a reader passes to NullableHolder.Push to
// mean "this cell is SQL NULL". Readers never call the wrapped
// Builder's PushNull/PushValue directly.
var NullValue = struct{}{}

// NullableHolder wraps a column's name and nullability (taken from its
// ColumnDescriptor) together with its Builder, serializing
// the one null check every column needs: a NULL cell is only legal when
// the descriptor says the column is nullable (spec.md §4.2).
type NullableHolder struct {
	Name     string
	Nullable bool
	Builder  Builder
}

// Push routes value to the wrapped builder. Pass columns.NullValue (or
// nil) for a NULL cell; anything else is forwarded to Builder.PushValue.
func (h *NullableHolder) Push(value any) error {
	if value == NullValue || value == nil {
		if !h.Nullable {
			return xerrors.New(xerrors.CodeNonNullableNull, "NULL value for non-nullable column "+h.Name)
		}
		h.Builder.PushNull()
		return nil
	}
	return h.Builder.PushValue(value)
}

// Len reports the wrapped builder's current length.
func (h *NullableHolder) Len() int { return h.Builder.Len() }
