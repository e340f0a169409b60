package mongodb

import (
	"context"
	"log"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFileRepo struct {
	col *mongo.Collection
}

func NewMongoFileRepo(db *mongo.Database) repository.FileRepository {
	col := db.Collection("generated_files")

	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "run_id", Value: 1}, bson.E{Key: "path", Value: 1}}},
	})

	return &MongoFileRepo{
		col: col,
	}
}

// SaveFiles replaces whatever was stored for runID.
func (r *MongoFileRepo) SaveFiles(ctx context.Context, runID string, files []entity.GeneratedFile) error {
	metrics.IncStoreOp(storeName, "put")

	if _, err := r.col.DeleteMany(ctx, bson.M{"run_id": runID}); err != nil {
		metrics.IncError("mongo_file_repo", "save_error")
		return err
	}
	if len(files) == 0 {
		return nil
	}

	docs := make([]interface{}, len(files))
	for i, f := range files {
		f.RunID = runID
		docs[i] = f
	}

	_, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		metrics.IncError("mongo_file_repo", "save_error")
		return err
	}
	return nil
}

func (r *MongoFileRepo) GetFiles(ctx context.Context, runID string) ([]entity.GeneratedFile, error) {
	metrics.IncStoreOp(storeName, "get")

	cur, err := r.col.Find(ctx, bson.M{"run_id": runID}, options.Find().SetSort(bson.D{bson.E{Key: "path", Value: 1}}))
	if err != nil {
		metrics.IncError("mongo_file_repo", "get_error")
		return nil, err
	}
	defer func() {
		err := cur.Close(ctx)
		if err != nil {
			log.Printf("close cursor err: %s", err)
		}
	}()

	var files []entity.GeneratedFile
	for cur.Next(ctx) {
		var f entity.GeneratedFile
		if err := cur.Decode(&f); err != nil {
			metrics.IncError("mongo_file_repo", "get_decode_error")
			return nil, err
		}
		files = append(files, f)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, repository.ErrNotFound
	}
	return files, nil
}

func (r *MongoFileRepo) DeleteFiles(ctx context.Context, runID string) error {
	metrics.IncStoreOp(storeName, "delete")

	_, err := r.col.DeleteMany(ctx, bson.M{"run_id": runID})
	if err != nil {
		metrics.IncError("mongo_file_repo", "delete_error")
		return err
	}
	return nil
}
