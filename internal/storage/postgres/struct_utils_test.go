package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/task"
)

type timestamps struct {
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type mockEntity struct {
	timestamps
	ID       id.ID   `db:"id"`
	Code     string  `db:"code"`
	Name     string  `db:"name"`
	Loaded   []id.ID `db:"-"`
	internal string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	for _, expected := range []string{"created_at", "updated_at", "id", "code", "name"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, 5)
}

func TestExtractDBColumns_DomainEntity(t *testing.T) {
	cols := ExtractDBColumns[task.Task]()

	for _, expected := range []string{"id", "board_id", "state_id", "title", "owner_employee_id", "version", "deletion_mark"} {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	e := mockEntity{
		timestamps: timestamps{CreatedAt: "then", UpdatedAt: "now"},
		ID:         id.New(),
		Code:       "TEST",
		Name:       "Test Name",
		Loaded:     []id.ID{id.New()},
		internal:   "hidden",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, "then", m["created_at"])
	assert.Equal(t, "now", m["updated_at"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 5)
}
