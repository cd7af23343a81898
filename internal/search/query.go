package search

import (
	"github.com/afterclass/afterclass-backend/internal/domain"
)

// buildSearchBody translates a domain filter into the index's native query
// DSL. This is the only place query-language specifics are allowed to leak.
func buildSearchBody(f *domain.WorkshopFilter) map[string]any {
	var must []map[string]any
	var filters []map[string]any

	if f.SearchText != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     f.SearchText,
				"fields":    []string{"title^2", "keywords", "providerTitle"},
				"fuzziness": "AUTO",
			},
		})
	}

	if len(f.IDs) > 0 {
		values := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			values[i] = id.String()
		}
		filters = append(filters, map[string]any{
			"ids": map[string]any{"values": values},
		})
	}

	// A workshop matches when its [minAge, maxAge] band overlaps the
	// requested band.
	if f.MinAge > 0 {
		filters = append(filters, map[string]any{
			"range": map[string]any{"maxAge": map[string]any{"gte": f.MinAge}},
		})
	}
	if f.MaxAge > 0 && f.MaxAge < 100 {
		filters = append(filters, map[string]any{
			"range": map[string]any{"minAge": map[string]any{"lte": f.MaxAge}},
		})
	}

	if f.IsFree {
		filters = append(filters, map[string]any{
			"term": map[string]any{"price": 0},
		})
	} else {
		priceRange := map[string]any{}
		if f.MinPrice > 0 {
			priceRange["gte"] = f.MinPrice
		}
		if f.MaxPrice > 0 {
			priceRange["lte"] = f.MaxPrice
		}
		if len(priceRange) > 0 {
			filters = append(filters, map[string]any{
				"range": map[string]any{"price": priceRange},
			})
		}
	}

	if ids := nonZeroDirections(f.DirectionIDs); len(ids) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"categoryId": ids},
		})
	}

	if f.City != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"city.keyword": f.City},
		})
	}

	if f.WithDisabilityOptions {
		filters = append(filters, map[string]any{
			"term": map[string]any{"withDisabilityOptions": true},
		})
	}

	var query map[string]any
	if len(must) == 0 && len(filters) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		boolQuery := map[string]any{}
		if len(must) > 0 {
			boolQuery["must"] = must
		}
		if len(filters) > 0 {
			boolQuery["filter"] = filters
		}
		query = map[string]any{"bool": boolQuery}
	}

	return map[string]any{
		"from":  f.From,
		"size":  f.Size,
		"query": query,
		"sort":  sortClause(f.OrderByField),
	}
}

// sortClause maps a domain ordering field onto index fields. String fields
// sort on their keyword sub-field; the document id is the stable tie-break.
func sortClause(field string) []map[string]any {
	idAsc := map[string]any{"id.keyword": map[string]any{"order": "asc"}}

	switch field {
	case domain.OrderByRating:
		return []map[string]any{
			{"rating": map[string]any{"order": "desc"}},
			idAsc,
		}
	case domain.OrderByPrice:
		return []map[string]any{
			{"price": map[string]any{"order": "asc"}},
			idAsc,
		}
	case domain.OrderByTitle:
		return []map[string]any{
			{"title.keyword": map[string]any{"order": "asc"}},
			idAsc,
		}
	default:
		return []map[string]any{idAsc}
	}
}

// nonZeroDirections drops the zero placeholder some clients send for
// "all directions".
func nonZeroDirections(ids []int32) []int32 {
	var out []int32
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}
