package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"surveyd/internal/storage"
)

func TestListFilter(t *testing.T) {
	tests := []struct {
		name string
		q    storage.ListQuery
		want bson.M
	}{
		{"empty", storage.ListQuery{}, bson.M{}},
		{"well filter", storage.ListQuery{WellID: "well-1"}, bson.M{"well_id": "well-1"}},
		{
			"cursor ascending",
			storage.ListQuery{AfterID: "rec-5"},
			bson.M{"_id": bson.M{"$gt": "rec-5"}},
		},
		{
			"cursor descending",
			storage.ListQuery{AfterID: "rec-5", Desc: true},
			bson.M{"_id": bson.M{"$lt": "rec-5"}},
		},
		{
			"well and cursor",
			storage.ListQuery{WellID: "well-1", AfterID: "rec-5"},
			bson.M{"well_id": "well-1", "_id": bson.M{"$gt": "rec-5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listFilter(tt.q))
		})
	}
}

func TestListSort(t *testing.T) {
	tests := []struct {
		name string
		q    storage.ListQuery
		want bson.D
	}{
		{
			"default id ascending",
			storage.ListQuery{SortField: "id"},
			bson.D{{Key: "_id", Value: 1}},
		},
		{
			"unknown field falls back to id",
			storage.ListQuery{SortField: "azimuth"},
			bson.D{{Key: "_id", Value: 1}},
		},
		{
			"created at with id tiebreak",
			storage.ListQuery{SortField: "createdAt"},
			bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			"descending",
			storage.ListQuery{SortField: "updatedAt", Desc: true},
			bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listSort(tt.q))
		})
	}
}
