package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Logical collections backing the service layer.
const (
	CollectionAccounts      = "accounts"
	CollectionAppointments  = "appointments"
	CollectionConsultations = "consultations"
	CollectionRecords       = "records"
)

// FieldID is the reserved key carrying the store-assigned identifier.
const FieldID = "_id"

// TimeLayout is the canonical textual form of native timestamps. Lexical
// comparison over this layout is chronologically correct.
const TimeLayout = "2006-01-02T15:04:05"

var (
	// ErrNoRecord is returned by FindOne when nothing matches.
	ErrNoRecord = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert violates a store-level
	// uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindText Kind = iota
	KindIdentifier
	KindTimestamp
	KindBool
	KindInt
	KindMap
)

// Value is a tagged union of the types a schemaless record may hold. The
// read path pattern-matches on Kind instead of probing concrete types.
type Value struct {
	kind Kind
	text string
	id   uuid.UUID
	ts   time.Time
	b    bool
	n    int64
	m    map[string]Value
}

func Text(s string) Value           { return Value{kind: KindText, text: s} }
func Identifier(id uuid.UUID) Value { return Value{kind: KindIdentifier, id: id} }
func Timestamp(t time.Time) Value   { return Value{kind: KindTimestamp, ts: t} }
func Bool(b bool) Value             { return Value{kind: KindBool, b: b} }
func Int(n int64) Value             { return Value{kind: KindInt, n: n} }
func Map(m map[string]Value) Value  { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind            { return v.kind }
func (v Value) Text() string          { return v.text }
func (v Value) ID() uuid.UUID         { return v.id }
func (v Value) Time() time.Time       { return v.ts }
func (v Value) Bool() bool            { return v.b }
func (v Value) Int() int64            { return v.n }
func (v Value) Map() map[string]Value { return v.m }

// Canonical renders the value as text: identifiers and timestamps become
// their textual form, which is what callers ever see.
func (v Value) Canonical() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindIdentifier:
		return v.id.String()
	case KindTimestamp:
		return v.ts.Format(TimeLayout)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	default:
		return ""
	}
}

// MarshalJSON flattens identifiers and timestamps to their canonical text so
// the stored document is plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.n)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return json.Marshal(v.Canonical())
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) == 0:
		*v = Text("")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case data[0] == '{':
		var m map[string]Value
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Map(m)
	case data[0] == 't' || data[0] == 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case data[0] == 'n':
		*v = Text("")
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		if n, err := num.Int64(); err == nil {
			*v = Int(n)
		} else {
			*v = Text(num.String())
		}
	}
	return nil
}

// Record is a single schemaless document.
type Record map[string]Value

// ID returns the store-assigned identifier, or uuid.Nil when unset.
func (r Record) ID() uuid.UUID {
	if v, ok := r[FieldID]; ok && v.Kind() == KindIdentifier {
		return v.ID()
	}
	return uuid.Nil
}

// Canonical renders a field as text, empty when absent.
func (r Record) Canonical(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return v.Canonical()
}

// Op is a filter comparison operator.
type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpGte
	OpLte
)

// Cond compares one field against a value.
type Cond struct {
	Field string
	Op    Op
	Value Value
}

// Filter is a conjunction of conditions.
type Filter []Cond

func Eq(field string, v Value) Cond  { return Cond{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v Value) Cond  { return Cond{Field: field, Op: OpNe, Value: v} }
func Gte(field string, v Value) Cond { return Cond{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v Value) Cond { return Cond{Field: field, Op: OpLte, Value: v} }

// ByID filters on the store-assigned identifier.
func ByID(id uuid.UUID) Filter {
	return Filter{Eq(FieldID, Identifier(id))}
}

// Matches evaluates the filter against a record. Ne matches records where
// the field is absent; the ordering operators compare canonical text, which
// is lexical and therefore correct for same-precision timestamps.
func (f Filter) Matches(rec Record) bool {
	for _, c := range f {
		v, present := rec[c.Field]
		switch c.Op {
		case OpEq:
			if !present || v.Canonical() != c.Value.Canonical() {
				return false
			}
		case OpNe:
			if present && v.Canonical() == c.Value.Canonical() {
				return false
			}
		case OpGte:
			if !present || v.Canonical() < c.Value.Canonical() {
				return false
			}
		case OpLte:
			if !present || v.Canonical() > c.Value.Canonical() {
				return false
			}
		}
	}
	return true
}

// Store is a keyed collection of schemaless records. Implementations assign
// an opaque identifier at insert time; the single-record mutations target the
// first match and report how many records were touched.
type Store interface {
	Insert(ctx context.Context, collection string, rec Record) (uuid.UUID, error)
	Find(ctx context.Context, collection string, filter Filter) ([]Record, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Record, error)
	UpdateOne(ctx context.Context, collection string, filter Filter, set Record) (int64, error)
	ReplaceOne(ctx context.Context, collection string, filter Filter, rec Record) (int64, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
}
