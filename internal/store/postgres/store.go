package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ccsfp/clinic-api/internal/store"
)

// One JSONB document table per collection.
var tables = map[string]string{
	store.CollectionAccounts:      "records_accounts",
	store.CollectionAppointments:  "records_appointments",
	store.CollectionConsultations: "records_consultations",
	store.CollectionRecords:       "records_visits",
}

// Slot uniqueness is enforced at the store level with a partial unique index,
// so the losing insert of a race is rejected even without the service lock.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS records_accounts (id UUID PRIMARY KEY, doc JSONB NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS records_appointments (id UUID PRIMARY KEY, doc JSONB NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS records_consultations (id UUID PRIMARY KEY, doc JSONB NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS records_visits (id UUID PRIMARY KEY, doc JSONB NOT NULL)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS records_accounts_username_key
		ON records_accounts ((doc->>'username'))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS records_appointments_slot_key
		ON records_appointments ((doc->>'nurse'), (doc->>'dateTime'))
		WHERE doc->>'status' IS DISTINCT FROM 'Rejected'`,
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

type row struct {
	ID  uuid.UUID `db:"id"`
	Doc []byte    `db:"doc"`
}

func (s *Store) Insert(ctx context.Context, collection string, rec store.Record) (uuid.UUID, error) {
	table, err := tableFor(collection)
	if err != nil {
		return uuid.Nil, err
	}

	payload, err := marshalDoc(rec)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	query := fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1, $2)", table)
	if _, err := s.db.ExecContext(ctx, query, id, payload); err != nil {
		return uuid.Nil, translateErr(err)
	}
	return id, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter) ([]store.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf("SELECT id, doc FROM %s WHERE %s ORDER BY id", table, where)

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	out := make([]store.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := unmarshalDoc(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf("SELECT id, doc FROM %s WHERE %s ORDER BY id LIMIT 1", table, where)

	var r row
	if err := s.db.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNoRecord
		}
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return unmarshalDoc(r)
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter store.Filter, set store.Record) (int64, error) {
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}

	payload, err := marshalDoc(set)
	if err != nil {
		return 0, err
	}

	where, args := buildWhere(filter, 2)
	query := fmt.Sprintf(
		"UPDATE %s SET doc = doc || $1::jsonb WHERE id = (SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1)",
		table, table, where,
	)
	return s.exec(ctx, query, append([]interface{}{payload}, args...)...)
}

func (s *Store) ReplaceOne(ctx context.Context, collection string, filter store.Filter, rec store.Record) (int64, error) {
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}

	payload, err := marshalDoc(rec)
	if err != nil {
		return 0, err
	}

	where, args := buildWhere(filter, 2)
	query := fmt.Sprintf(
		"UPDATE %s SET doc = $1::jsonb WHERE id = (SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1)",
		table, table, where,
	)
	return s.exec(ctx, query, append([]interface{}{payload}, args...)...)
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}

	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE id = (SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1)",
		table, table, where,
	)
	return s.exec(ctx, query, args...)
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}

	where, args := buildWhere(filter, 1)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	return s.exec(ctx, query, args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// buildWhere compiles a filter into a WHERE clause with placeholders starting
// at argIdx. Ne compiles to IS DISTINCT FROM so absent fields match, mirroring
// Filter.Matches.
func buildWhere(filter store.Filter, argIdx int) (string, []interface{}) {
	if len(filter) == 0 {
		return "TRUE", nil
	}

	clauses := make([]string, 0, len(filter))
	args := make([]interface{}, 0, len(filter))
	for _, c := range filter {
		if c.Field == store.FieldID {
			args = append(args, c.Value.ID())
			clauses = append(clauses, fmt.Sprintf("id = $%d", argIdx))
			argIdx++
			continue
		}

		expr := fmt.Sprintf("doc->>%s", pq.QuoteLiteral(c.Field))
		args = append(args, c.Value.Canonical())
		switch c.Op {
		case store.OpNe:
			clauses = append(clauses, fmt.Sprintf("%s IS DISTINCT FROM $%d", expr, argIdx))
		case store.OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", expr, argIdx))
		case store.OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", expr, argIdx))
		default:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", expr, argIdx))
		}
		argIdx++
	}
	return strings.Join(clauses, " AND "), args
}

func marshalDoc(rec store.Record) ([]byte, error) {
	doc := make(store.Record, len(rec))
	for k, v := range rec {
		if k == store.FieldID {
			continue
		}
		doc[k] = v
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return payload, nil
}

func unmarshalDoc(r row) (store.Record, error) {
	var rec store.Record
	if err := json.Unmarshal(r.Doc, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	rec[store.FieldID] = store.Identifier(r.ID)
	return rec, nil
}

func translateErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrDuplicateKey, pqErr.Constraint)
	}
	return err
}

func tableFor(collection string) (string, error) {
	table, ok := tables[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return table, nil
}
