package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/models"
)

func TestBuildTaskFilter(t *testing.T) {
	assert.Equal(t, bson.M{"owner": "u1"}, buildTaskFilter("u1", models.DefaultTaskQuery()))

	q := models.DefaultTaskQuery()
	q.Status = ptr(models.StatusPending)
	q.Priority = ptr(models.PriorityLow)
	q.Search = "a.b(c)"

	f := buildTaskFilter("u1", q)
	assert.Equal(t, "u1", f["owner"])
	assert.Equal(t, "pending", f["status"])
	assert.Equal(t, "low", f["priority"])

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	re := primitive.Regex{Pattern: `a\.b\(c\)`, Options: "i"}
	assert.Equal(t, bson.A{bson.M{"title": re}, bson.M{"description": re}}, or)
}

func TestBuildTaskSort(t *testing.T) {
	q := models.DefaultTaskQuery()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, buildTaskSort(q))

	q.SortBy, q.Descending = models.SortByPriority, false
	assert.Equal(t, bson.D{{Key: "priority", Value: 1}, {Key: "_id", Value: 1}}, buildTaskSort(q))

	q.SortBy = "nope"
	assert.Equal(t, "createdAt", buildTaskSort(q)[0].Key)
}

func TestGroupCountPipeline(t *testing.T) {
	p := groupCountPipeline("u1", "status")
	require.Len(t, p, 2)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.D{{Key: "owner", Value: "u1"}}, p[0][0].Value)
	assert.Equal(t, "$group", p[1][0].Key)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: "$status"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}, p[1][0].Value)
}
