package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatch_DistinguishesAbsentNullAndValue(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","dueDate":null}`), &p))

	assert.Equal(t, Some("x"), p.Title)
	assert.Equal(t, Null(), p.DueDate)
	assert.False(t, p.Status.Set)
	assert.False(t, p.Empty())

	var empty TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Empty())
}

func TestOptionalString_RejectsNonString(t *testing.T) {
	var p TaskPatch
	assert.Error(t, json.Unmarshal([]byte(`{"status":3}`), &p))
}

func TestNewPagination(t *testing.T) {
	q := DefaultTaskQuery()
	assert.Equal(t, Pagination{Current: 1, Pages: 0, Total: 0, Limit: 10}, NewPagination(q, 0))
	assert.Equal(t, Pagination{Current: 1, Pages: 1, Total: 10, Limit: 10}, NewPagination(q, 10))
	assert.Equal(t, Pagination{Current: 1, Pages: 2, Total: 11, Limit: 10}, NewPagination(q, 11))

	q.Page, q.Limit = 4, 3
	assert.Equal(t, 9, q.Skip())
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, TaskStatus("").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, TaskPriority("HIGH").Valid())
	assert.True(t, SortByDueDate.Valid())
	assert.False(t, TaskSortField("owner").Valid())
}
