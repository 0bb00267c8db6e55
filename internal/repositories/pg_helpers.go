package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq" // For pq.Error and pq.Array
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Postgres rows keep the 24-hex ObjectID form so ids look the same on both backends.

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func parseRowID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed row id %q", ErrDatabaseError, raw)
	}
	return id, nil
}

func parseNullRowID(raw sql.NullString) (*primitive.ObjectID, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}
	id, err := parseRowID(raw.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullRowID(id *primitive.ObjectID) sql.NullString {
	if id == nil || id.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: id.Hex(), Valid: true}
}

// isUniqueViolation reports a unique_violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code.Name() != "unique_violation" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// whereBuilder accumulates AND-ed conditions with positional placeholders.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) addIDs(column string, ids []primitive.ObjectID) {
	w.add(column+" = ANY(?)", pq.Array(hexIDs(ids)))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limitClause appends LIMIT/OFFSET placeholders after the existing args.
func (w *whereBuilder) limitClause(page, limit int) (string, []interface{}) {
	if limit <= 0 {
		return "", w.args
	}
	args := append(append([]interface{}{}, w.args...), limit, pageOffset(page, limit))
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}
