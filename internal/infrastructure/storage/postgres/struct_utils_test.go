package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"repairdesk/internal/core/entity"
)

type mockRecord struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
	Skip string `db:"-"`
	entity.Audit
	entity.SoftDelete
}

func TestExtractDBColumns_EmbeddedStructs(t *testing.T) {
	cols := ExtractDBColumns[mockRecord]()

	assert.Equal(t, []string{
		"id", "code", "name",
		"created_at", "updated_at", "created_by", "updated_by",
		"is_deleted", "deleted_at",
	}, cols)
}

func TestStructToMap_EmbeddedStructs(t *testing.T) {
	now := time.Now().UTC()
	rec := mockRecord{
		ID:   7,
		Code: "SCR-01",
		Name: "Display",
		Skip: "ignored",
		Audit: entity.Audit{
			CreatedAt: now,
			CreatedBy: "tech",
		},
		SoftDelete: entity.SoftDelete{IsDeleted: true, DeletedAt: &now},
	}

	m := StructToMap(&rec)

	assert.Equal(t, int64(7), m["id"])
	assert.Equal(t, "SCR-01", m["code"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "tech", m["created_by"])
	assert.Equal(t, true, m["is_deleted"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 9)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}

func TestWithoutAndPick(t *testing.T) {
	cols := Without([]string{"id", "code", "name"}, "id")
	assert.Equal(t, []string{"code", "name"}, cols)

	picked := Pick(map[string]any{"id": 1, "code": "A", "extra": true}, []string{"id", "code"})
	assert.Equal(t, map[string]any{"id": 1, "code": "A"}, picked)
}
