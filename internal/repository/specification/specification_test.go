package specification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	Id uuid.UUID
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func render(t *testing.T, specs ...Specification) string {
	db := dryRunDB(t).Table("rows")
	for _, s := range specs {
		db = s.Apply(db)
	}
	var out []row
	return db.Find(&out).Statement.SQL.String()
}

func TestSpecificationsRenderSQL(t *testing.T) {
	id := uuid.New()

	sql := render(t,
		UserOwnedBy{UserID: id},
		BySessionID{SessionID: id},
		OrderBy{Field: "created_at"},
		Pagination{Limit: 10, Offset: 20},
	)

	assert.Contains(t, sql, `"user_id" = $1`)
	assert.Contains(t, sql, `"session_id" = $2`)
	assert.Contains(t, sql, `ORDER BY "created_at"`)
	assert.NotContains(t, sql, "DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestOrderByDesc(t *testing.T) {
	assert.Contains(t, render(t, OrderBy{Field: "updated_at", Desc: true}), `ORDER BY "updated_at" DESC`)
}

func TestOrderByQuotesFieldName(t *testing.T) {
	sql := render(t, OrderBy{Field: "created_at; DROP TABLE users"})
	assert.Contains(t, sql, `"created_at; DROP TABLE users"`)
}

func TestPaginationSkipsZeroValues(t *testing.T) {
	sql := render(t, Pagination{})
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")
}

func TestByUsernameAndCrisisOnly(t *testing.T) {
	sql := render(t, ByUsername{Username: "sam"}, CrisisOnly{})
	assert.Contains(t, sql, `"username" = $1`)
	assert.Contains(t, sql, `"is_crisis" = $2`)
}
