package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gopher0727/GuildForge/internal/models"
)

const (
	templatesCollection    = "discord_templates"
	creationLogsCollection = "created_servers"
	statusChecksCollection = "status_checks"
)

// NewMongoStore 基于 MongoDB 文档集合构建仓储
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Templates:    &MongoTemplateRepository{coll: db.Collection(templatesCollection)},
		CreationLogs: &MongoCreationLogRepository{coll: db.Collection(creationLogsCollection)},
		StatusChecks: &MongoStatusCheckRepository{coll: db.Collection(statusChecksCollection)},
	}
}

// EnsureMongoIndexes 为按时间排序的查询建立索引
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	byTime := []struct {
		collection string
		field      string
	}{
		{templatesCollection, "created_at"},
		{creationLogsCollection, "created_at"},
		{statusChecksCollection, "timestamp"},
	}
	for _, idx := range byTime {
		_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: idx.field, Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s.%s: %w", idx.collection, idx.field, err)
		}
	}
	return nil
}

type MongoTemplateRepository struct {
	coll *mongo.Collection
}

func (r *MongoTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	if _, err := r.coll.InsertOne(ctx, template); err != nil {
		return fmt.Errorf("failed to insert template %s: %w", template.ID, err)
	}
	return nil
}

func (r *MongoTemplateRepository) List(ctx context.Context, limit int) ([]models.Template, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]models.Template, 0)
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return templates, nil
}

func (r *MongoTemplateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return &template, nil
}

func (r *MongoTemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

type MongoCreationLogRepository struct {
	coll *mongo.Collection
}

func (r *MongoCreationLogRepository) Create(ctx context.Context, log *models.CreationLog) error {
	if _, err := r.coll.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert creation log: %w", err)
	}
	return nil
}

func (r *MongoCreationLogRepository) ListRecent(ctx context.Context, limit int) ([]models.CreationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list creation logs: %w", err)
	}

	logs := make([]models.CreationLog, 0)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode creation logs: %w", err)
	}
	return logs, nil
}

type MongoStatusCheckRepository struct {
	coll *mongo.Collection
}

func (r *MongoStatusCheckRepository) Create(ctx context.Context, check *models.StatusCheck) error {
	if _, err := r.coll.InsertOne(ctx, check); err != nil {
		return fmt.Errorf("failed to insert status check: %w", err)
	}
	return nil
}

func (r *MongoStatusCheckRepository) List(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list status checks: %w", err)
	}

	checks := make([]models.StatusCheck, 0)
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, fmt.Errorf("failed to decode status checks: %w", err)
	}
	return checks, nil
}
