package sqlutil

import (
	"database/sql"
	"time"
)

// ToSqlTime converts an optional timestamp to sql.NullTime.
func ToSqlTime(val *time.Time) sql.NullTime {
	if val == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *val, Valid: true}
}

// FromSqlTime returns nil for a NULL column.
func FromSqlTime(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time
	return &t
}
