package sqlutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeConverters(t *testing.T) {
	assert.Equal(t, sql.NullTime{}, ToSqlTime(nil))
	assert.Nil(t, FromSqlTime(sql.NullTime{}))

	now := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)
	nt := ToSqlTime(&now)
	assert.True(t, nt.Valid)

	back := FromSqlTime(nt)
	if assert.NotNil(t, back) {
		assert.True(t, now.Equal(*back))
	}
}
