package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskmanager/internal/models"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"

	passwordResetsCollection = "password_resets"
)

type mongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &mongoTaskRepository{coll: db.Collection(tasksCollection)}
}

// BSON datetimes carry millisecond precision.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := mongoNow()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *mongoTaskRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	var t models.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

func (r *mongoTaskRepository) List(ctx context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int64, error) {
	filter := buildTaskFilter(ownerID, q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(buildTaskSort(q)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *mongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = mongoNow()
	update := bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"dueDate":     task.DueDate,
		"updatedAt":   task.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var saved models.Task
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": task.ID, "owner": task.Owner}, update, opts).Decode(&saved)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	*task = saved
	return nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": ownerID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func (r *mongoTaskRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *mongoTaskRepository) CountByStatus(ctx context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ctx, ownerID, "status")
}

func (r *mongoTaskRepository) CountByPriority(ctx context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ctx, ownerID, "priority")
}

func (r *mongoTaskRepository) countBy(ctx context.Context, ownerID, field string) ([]models.GroupCount, error) {
	cur, err := r.coll.Aggregate(ctx, groupCountPipeline(ownerID, field))
	if err != nil {
		return nil, fmt.Errorf("aggregate tasks by %s: %w", field, err)
	}
	defer cur.Close(ctx)

	var out []models.GroupCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}
	return out, nil
}

// buildTaskFilter renders the owner scope and filters as one AND document.
func buildTaskFilter(ownerID string, q models.TaskQuery) bson.M {
	filter := bson.M{"owner": ownerID}
	if q.Status != nil {
		filter["status"] = string(*q.Status)
	}
	if q.Priority != nil {
		filter["priority"] = string(*q.Priority)
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	return filter
}

// buildTaskSort orders by the requested field with _id as a tie-breaker
// so pages never overlap.
func buildTaskSort(q models.TaskQuery) bson.D {
	dir := 1
	if q.Descending {
		dir = -1
	}
	field := string(q.SortBy)
	if !q.SortBy.Valid() {
		field = string(models.SortByCreatedAt)
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func groupCountPipeline(ownerID, field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}
