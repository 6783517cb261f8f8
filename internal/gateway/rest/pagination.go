package rest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"surveyd/internal/storage"
)

const (
	defaultTake = 25
	maxTake     = 100
)

// ListParams are the pagination and filter query parameters shared by list
// endpoints. Skip and Cursor are mutually exclusive: cursor mode keys the
// next page off the last-seen record id instead of a numeric offset, so pages
// stay correct under concurrent inserts and deletes.
type ListParams struct {
	Skip   int    `schema:"skip" validate:"gte=0"`
	Take   int    `schema:"take" validate:"gte=1,lte=100"`
	Sort   string `schema:"sort"`
	Cursor string `schema:"cursor"`
	Well   string `schema:"well"`
}

// sortableFields are the API field names list responses can be ordered by.
var sortableFields = map[string]bool{
	"id":         true,
	"chosenID":   true,
	"dataSource": true,
	"wellID":     true,
	"createdAt":  true,
	"updatedAt":  true,
}

// parseListParams decodes and validates the query string.
func parseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Take: defaultTake, Sort: "+id"}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&params, values); err != nil {
		return params, errors.New("invalid query parameters")
	}

	if err := validateStruct(&params); err != nil {
		return params, err
	}

	if params.Cursor != "" && params.Skip > 0 {
		return params, errors.New("skip and cursor are mutually exclusive")
	}

	field, _, err := parseSort(params.Sort)
	if err != nil {
		return params, err
	}
	if params.Cursor != "" && field != "id" {
		return params, errors.New("cursor pagination requires id ordering")
	}

	return params, nil
}

// parseSort splits a "+field"/"-field" expression.
func parseSort(sort string) (field string, desc bool, err error) {
	if sort == "" {
		return "id", false, nil
	}
	switch sort[0] {
	case '-':
		desc = true
		field = sort[1:]
	case '+':
		field = sort[1:]
	default:
		field = sort
	}
	if !sortableFields[field] {
		return "", false, fmt.Errorf("cannot sort by %q", field)
	}
	return field, desc, nil
}

// listQuery converts validated params into a storage query. The store fetches
// take+1 rows so hasNext is known without a second count query.
func listQuery(params ListParams) (storage.ListQuery, error) {
	field, desc, err := parseSort(params.Sort)
	if err != nil {
		return storage.ListQuery{}, err
	}

	q := storage.ListQuery{
		WellID:    params.Well,
		SortField: field,
		Desc:      desc,
		Limit:     params.Take + 1,
	}

	if params.Cursor != "" {
		afterID, err := decodeCursor(params.Cursor)
		if err != nil {
			return storage.ListQuery{}, err
		}
		q.AfterID = afterID
	} else {
		q.Skip = params.Skip
	}

	return q, nil
}

// encodeCursor wraps a record id into an opaque page token.
func encodeCursor(id string) string {
	return base64.URLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", errors.New("invalid cursor")
	}
	return string(raw), nil
}

// pageURL rebuilds the list URL with the given skip/cursor. A negative skip
// and empty cursor yield the bare first-page URL.
func pageURL(path string, params ListParams, skip int, cursor string) string {
	values := url.Values{}
	if params.Well != "" {
		values.Set("well", params.Well)
	}
	if params.Sort != "" && params.Sort != "+id" {
		values.Set("sort", params.Sort)
	}
	values.Set("take", strconv.Itoa(params.Take))
	if cursor != "" {
		values.Set("cursor", cursor)
	} else if skip > 0 {
		values.Set("skip", strconv.Itoa(skip))
	}
	return path + "?" + values.Encode()
}

// buildLinkHeader assembles the RFC 5988 Link header: first always, next only
// when another page exists, prev only when the page was reached by skip or
// cursor, last only in offset mode with a known total count.
func buildLinkHeader(path string, params ListParams, hasNext bool, lastID string, total int64) string {
	links := []string{
		fmt.Sprintf(`<%s>; rel="first"`, pageURL(path, params, 0, "")),
	}

	if params.Cursor != "" {
		if hasNext {
			links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(path, params, 0, encodeCursor(lastID))))
		}
		// Backwards from a cursor means starting over.
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(path, params, 0, "")))
	} else {
		if hasNext {
			links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(path, params, params.Skip+params.Take, "")))
		}
		if params.Skip > 0 {
			prev := params.Skip - params.Take
			if prev < 0 {
				prev = 0
			}
			links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(path, params, prev, "")))
		}
		if total >= 0 {
			lastSkip := 0
			if total > 0 {
				lastSkip = int((total - 1) / int64(params.Take) * int64(params.Take))
			}
			links = append(links, fmt.Sprintf(`<%s>; rel="last"`, pageURL(path, params, lastSkip, "")))
		}
	}

	return strings.Join(links, ", ")
}

// setLinkHeader writes the Link header for the request's own path.
func setLinkHeader(w http.ResponseWriter, r *http.Request, params ListParams, hasNext bool, lastID string, total int64) {
	w.Header().Set("Link", buildLinkHeader(r.URL.Path, params, hasNext, lastID, total))
}
