package mysql

import (
	"strings"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// buildWhereClause builds a SQL WHERE clause from the filter fields that can
// be pushed down to the database. Tokens, tags and text matching stay in Go.
func buildWhereClause(filter *storage.Filter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter == nil {
		return "", nil
	}

	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.Until)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}
