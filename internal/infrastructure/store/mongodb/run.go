package mongodb

import (
	"context"
	"errors"
	"log"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const storeName = "mongo"

type MongoRunRepo struct {
	runsCol *mongo.Collection
}

func NewMongoRunRepo(db *mongo.Database) repository.RunRepository {
	col := db.Collection("runs")

	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{bson.E{Key: "status", Value: 1}}},
	})

	return &MongoRunRepo{
		runsCol: col,
	}
}

func (r *MongoRunRepo) Create(ctx context.Context, run *entity.Run) error {
	metrics.IncStoreOp(storeName, "put")

	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	_, err := r.runsCol.InsertOne(ctx, run)
	if err != nil {
		metrics.IncError("mongo_run_repo", "create_error")
		return err
	}
	return nil
}

func (r *MongoRunRepo) GetByID(ctx context.Context, id string) (*entity.Run, error) {
	metrics.IncStoreOp(storeName, "get")

	var run entity.Run
	err := r.runsCol.FindOne(ctx, bson.M{"id": id}).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		metrics.IncError("mongo_run_repo", "get_error")
		return nil, err
	}
	return &run, nil
}

func (r *MongoRunRepo) List(ctx context.Context) ([]*entity.Run, error) {
	metrics.IncStoreOp(storeName, "list")

	opts := options.Find().SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})
	runs, err := r.find(ctx, bson.D{}, opts)
	if err != nil {
		metrics.IncError("mongo_run_repo", "list_error")
		return nil, err
	}
	return runs, nil
}

func (r *MongoRunRepo) ListByStatus(ctx context.Context, status entity.RunStatus) ([]*entity.Run, error) {
	metrics.IncStoreOp(storeName, "list")

	opts := options.Find().SetSort(bson.D{bson.E{Key: "created_at", Value: 1}})
	runs, err := r.find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		metrics.IncError("mongo_run_repo", "list_by_status_error")
		return nil, err
	}
	return runs, nil
}

func (r *MongoRunRepo) Update(ctx context.Context, run *entity.Run) error {
	metrics.IncStoreOp(storeName, "put")

	run.UpdatedAt = time.Now().UTC()
	res, err := r.runsCol.ReplaceOne(ctx, bson.M{"id": run.ID}, run)
	if err != nil {
		metrics.IncError("mongo_run_repo", "update_error")
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoRunRepo) UpdateStatus(ctx context.Context, id string, status entity.RunStatus) error {
	metrics.IncStoreOp(storeName, "put")

	filter := bson.M{"id": id}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}
	res, err := r.runsCol.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.IncError("mongo_run_repo", "update_status_error")
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoRunRepo) Delete(ctx context.Context, id string) error {
	metrics.IncStoreOp(storeName, "delete")

	res, err := r.runsCol.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		metrics.IncError("mongo_run_repo", "delete_error")
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoRunRepo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*entity.Run, error) {
	cur, err := r.runsCol.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		err := cur.Close(ctx)
		if err != nil {
			log.Printf("close cursor err: %s", err)
		}
	}()

	var runs []*entity.Run
	for cur.Next(ctx) {
		var run entity.Run
		if err := cur.Decode(&run); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, cur.Err()
}
