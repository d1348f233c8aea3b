package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"taskmanager/internal/models"
)

type mongoPasswordResetRepository struct {
	coll *mongo.Collection
}

func NewMongoPasswordResetRepository(db *mongo.Database) PasswordResetRepository {
	return &mongoPasswordResetRepository{coll: db.Collection(passwordResetsCollection)}
}

func (r *mongoPasswordResetRepository) Create(ctx context.Context, pr *models.PasswordReset) error {
	pr.ID = uuid.NewString()
	pr.CreatedAt = mongoNow()
	if _, err := r.coll.InsertOne(ctx, pr); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (r *mongoPasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	var pr models.PasswordReset
	if err := r.coll.FindOne(ctx, bson.M{"tokenHash": tokenHash}).Decode(&pr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find password reset: %w", err)
	}
	return &pr, nil
}

func (r *mongoPasswordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "usedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"usedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrResetTokenInvalid
	}
	return nil
}
