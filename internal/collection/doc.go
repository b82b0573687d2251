// Package collection loads collection specs written in CUE.
//
// A collection names a table, its unique key, its typed fields and which
// of them callers may sort by:
//
//	collection: Articles: {
//		table: "articles"
//		key:   "id"
//		fields: {
//			id:     int
//			title:  string
//			author: string | null
//		}
//		sortable:     ["title", "author"]
//		default_sort: "title:asc"
//		page_size: {default: 10, max: 50}
//	}
//
// A Spec turns caller input into window parameters: CheckSort rejects
// properties that are not sortable, Normalize applies the default sort and
// appends the key as the final tie-breaker (keyset pagination needs a total
// order), and PageSize clamps requested sizes.
package collection
