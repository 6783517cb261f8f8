package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyd/internal/storage"
)

// Backend implements storage.WellStore and storage.SurveyStore on MongoDB.
type Backend struct {
	client           *mongo.Client
	db               *mongo.Database
	surveyCollection string
	wellCollection   string
}

// NewBackend connects to MongoDB and verifies the connection.
func NewBackend(ctx context.Context, uri, dbName, surveyColl, wellColl string) (*Backend, error) {
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	b := &Backend{
		client:           client,
		db:               client.Database(dbName),
		surveyCollection: surveyColl,
		wellCollection:   wellColl,
	}
	b.EnsureIndexes(ctx)
	return b, nil
}

// EnsureIndexes creates the indexes list queries and well resolution rely on.
// Failures are ignored; the collections stay usable without them.
func (b *Backend) EnsureIndexes(ctx context.Context) {
	surveys := b.db.Collection(b.surveyCollection)
	_, _ = surveys.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "well_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "chosen_id", Value: 1}, {Key: "data_source", Value: 1}}},
	})

	wells := b.db.Collection(b.wellCollection)
	_, _ = wells.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chosen_id", Value: 1}, {Key: "data_source", Value: 1}, {Key: "project_id", Value: 1}}},
	})
}

func (b *Backend) GetByID(ctx context.Context, id string) (*storage.Well, error) {
	var well storage.Well
	err := b.db.Collection(b.wellCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&well)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &well, nil
}

func (b *Backend) FindByChosenID(ctx context.Context, chosenID, dataSource string, projectID *string) ([]*storage.Well, error) {
	filter := bson.M{
		"chosen_id":   chosenID,
		"data_source": dataSource,
	}
	if projectID != nil {
		filter["project_id"] = *projectID
	} else {
		filter["project_id"] = bson.M{"$exists": false}
	}

	cursor, err := b.db.Collection(b.wellCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var wells []*storage.Well
	if err := cursor.All(ctx, &wells); err != nil {
		return nil, err
	}
	return wells, nil
}

func (b *Backend) GetByWell(ctx context.Context, wellID string) (*storage.SurveyRecord, error) {
	var rec storage.SurveyRecord
	err := b.db.Collection(b.surveyCollection).FindOne(ctx, bson.M{"well_id": wellID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (b *Backend) List(ctx context.Context, q storage.ListQuery) ([]*storage.SurveyRecord, error) {
	filter := listFilter(q)

	findOptions := options.Find().SetSort(listSort(q))
	if q.Skip > 0 {
		findOptions.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := b.db.Collection(b.surveyCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*storage.SurveyRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *Backend) Count(ctx context.Context, q storage.ListQuery) (int64, error) {
	filter := bson.M{}
	if q.WellID != "" {
		filter["well_id"] = q.WellID
	}
	return b.db.Collection(b.surveyCollection).CountDocuments(ctx, filter)
}

func (b *Backend) CountByWell(ctx context.Context, wellID string) (int64, error) {
	return b.db.Collection(b.surveyCollection).CountDocuments(ctx, bson.M{"well_id": wellID})
}

// Close closes the client connection.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
