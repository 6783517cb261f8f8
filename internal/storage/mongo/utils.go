package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"surveyd/internal/storage"
)

// sortableFields maps API sort field names to document keys. The record id is
// always appended as a tiebreak so pagination order is total.
var sortableFields = map[string]string{
	"chosenID":   "chosen_id",
	"dataSource": "data_source",
	"wellID":     "well_id",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"id":         "_id",
}

// listFilter builds the find filter for a list query. In cursor mode the
// filter is augmented with "_id beyond cursor" in sort direction, so a page
// stays correct even when earlier rows are inserted or deleted concurrently.
func listFilter(q storage.ListQuery) bson.M {
	filter := bson.M{}
	if q.WellID != "" {
		filter["well_id"] = q.WellID
	}
	if q.AfterID != "" {
		op := "$gt"
		if q.Desc {
			op = "$lt"
		}
		filter["_id"] = bson.M{op: q.AfterID}
	}
	return filter
}

// listSort builds the deterministic sort: requested field first, record id as
// the stable secondary key.
func listSort(q storage.ListQuery) bson.D {
	dir := 1
	if q.Desc {
		dir = -1
	}

	field, ok := sortableFields[q.SortField]
	if !ok || field == "" {
		field = "_id"
	}

	sort := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: dir})
	}
	return sort
}
