package survey

// ConflictKind classifies a per-key merge failure.
type ConflictKind string

const (
	// ConflictDuplicateOnAdd means an added depth already exists in the record.
	ConflictDuplicateOnAdd ConflictKind = "duplicate_on_add"
	// ConflictNotFoundOnUpdate means an updated depth is absent from the record.
	ConflictNotFoundOnUpdate ConflictKind = "not_found_on_update"
	// ConflictNotFoundOnDelete means a removed depth is absent from the record.
	ConflictNotFoundOnDelete ConflictKind = "not_found_on_delete"
)

// Conflict is one per-key merge failure. Conflicts are always collected per
// operation, never returned one at a time. Key is the offending measured
// depth; SourceIndex is the row's position in the client payload as
// submitted, before normalization.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Key         float64      `json:"measuredDepth"`
	SourceIndex int          `json:"index"`
}

// Add merges payload stations into db with a two-pointer sorted merge,
// O(n+m). A depth present in both sides is a DuplicateOnAdd conflict. If any
// conflict is found the input db is returned unchanged; otherwise the merged,
// sorted, duplicate-free set replaces it. Neither argument is mutated.
func Add(db, payload MeasurementSet) (MeasurementSet, []Conflict) {
	existing := db.Stations()
	incoming := normalizeStations(payload)

	out := make([]Station, 0, len(existing)+len(incoming))
	var conflicts []Conflict

	i, j := 0, 0
	for i < len(existing) || j < len(incoming) {
		switch {
		case j >= len(incoming) || (i < len(existing) && existing[i].MeasuredDepth < incoming[j].row.MeasuredDepth):
			out = append(out, existing[i])
			i++
		case i >= len(existing) || existing[i].MeasuredDepth > incoming[j].row.MeasuredDepth:
			// Depths repeated inside the payload itself would survive the
			// walk against db, so they are caught here against each other.
			if j+1 < len(incoming) && incoming[j+1].row.MeasuredDepth == incoming[j].row.MeasuredDepth {
				conflicts = append(conflicts, Conflict{
					Kind:        ConflictDuplicateOnAdd,
					Key:         incoming[j+1].row.MeasuredDepth,
					SourceIndex: incoming[j+1].idx,
				})
			}
			out = append(out, incoming[j].row)
			j++
		default:
			// Tie: the row is dropped from the output, which is irrelevant
			// because any conflict rejects the whole operation.
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictDuplicateOnAdd,
				Key:         existing[i].MeasuredDepth,
				SourceIndex: incoming[j].idx,
			})
			i++
			j++
		}
	}

	if len(conflicts) > 0 {
		return db, conflicts
	}
	return FromStations(out), nil
}

// Update replaces the non-key columns of every db station whose depth appears
// in the payload. Payload depths absent from db are NotFoundOnUpdate
// conflicts. All-or-nothing: any conflict returns db unchanged.
func Update(db, payload MeasurementSet) (MeasurementSet, []Conflict) {
	existing := db.Stations()
	incoming := normalizeStations(payload)

	out := make([]Station, 0, len(existing))
	var conflicts []Conflict

	j := 0
	for i := 0; i < len(existing); {
		switch {
		case j < len(incoming) && existing[i].MeasuredDepth == incoming[j].row.MeasuredDepth:
			replaced := incoming[j].row
			replaced.MeasuredDepth = existing[i].MeasuredDepth
			out = append(out, replaced)
			i++
			j++
		case j < len(incoming) && existing[i].MeasuredDepth > incoming[j].row.MeasuredDepth:
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictNotFoundOnUpdate,
				Key:         incoming[j].row.MeasuredDepth,
				SourceIndex: incoming[j].idx,
			})
			j++
		default:
			out = append(out, existing[i])
			i++
		}
	}
	for ; j < len(incoming); j++ {
		conflicts = append(conflicts, Conflict{
			Kind:        ConflictNotFoundOnUpdate,
			Key:         incoming[j].row.MeasuredDepth,
			SourceIndex: incoming[j].idx,
		})
	}

	if len(conflicts) > 0 {
		return db, conflicts
	}
	return FromStations(out), nil
}

// Delete removes the stations whose depths appear in keys. Keys absent from
// db are NotFoundOnDelete conflicts. All-or-nothing: any conflict returns db
// unchanged. Delete with no keys is a no-op.
func Delete(db MeasurementSet, keys []float64) (MeasurementSet, []Conflict) {
	existing := db.Stations()
	sorted := normalizeKeys(keys)

	out := make([]Station, 0, len(existing))
	var conflicts []Conflict

	j := 0
	for i := 0; i < len(existing); {
		switch {
		case j < len(sorted) && existing[i].MeasuredDepth == sorted[j].key:
			i++
			j++
		case j < len(sorted) && existing[i].MeasuredDepth > sorted[j].key:
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictNotFoundOnDelete,
				Key:         sorted[j].key,
				SourceIndex: sorted[j].idx,
			})
			j++
		default:
			out = append(out, existing[i])
			i++
		}
	}
	for ; j < len(sorted); j++ {
		conflicts = append(conflicts, Conflict{
			Kind:        ConflictNotFoundOnDelete,
			Key:         sorted[j].key,
			SourceIndex: sorted[j].idx,
		})
	}

	if len(conflicts) > 0 {
		return db, conflicts
	}
	return FromStations(out), nil
}
