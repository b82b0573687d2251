// Package testutil provides deterministic fixtures shared by package tests.
package testutil

import (
	"github.com/roach88/pagewin/internal/ir"
)

// ArticlesTable is the table name fixtures are loaded under.
const ArticlesTable = "articles"

// ArticleCount is the number of rows Articles returns.
const ArticleCount = 24

var articleTitles = []string{"Alpha", "bravo", "Charlie", "delta", "Echo", "foxtrot", "Golf", "hotel"}

// ArticleColumns lists the article columns in declaration order.
func ArticleColumns() []string {
	return []string{"id", "title", "score", "status", "author", "featured"}
}

// ArticleBindings selects every article column under its own name.
func ArticleBindings() map[string]string {
	b := make(map[string]string)
	for _, c := range ArticleColumns() {
		b[c] = c
	}
	return b
}

// Articles returns ArticleCount rows with repeated titles, so title sorts
// need the id tie-breaker. Scores are distinct. Titles mix upper and
// lower case to exercise byte-wise ordering. Every third article is a
// draft, every fifth has no author.
func Articles() []ir.Object {
	seq := NewSequence()
	rows := make([]ir.Object, 0, ArticleCount)
	for i := 0; i < ArticleCount; i++ {
		id := seq.Next()

		status := "published"
		if id%3 == 0 {
			status = "draft"
		}
		var author ir.Value = ir.String(articleTitles[(i+3)%len(articleTitles)] + " Writer")
		if id%5 == 0 {
			author = ir.Null{}
		}

		rows = append(rows, ir.Object{
			"id":       ir.Int(id),
			"title":    ir.String(articleTitles[i%len(articleTitles)]),
			"score":    ir.Int((id * 37) % 50),
			"status":   ir.String(status),
			"author":   author,
			"featured": ir.Bool(id%4 == 0),
		})
	}
	return rows
}

// IDs extracts the "id" column, for compact assertions.
func IDs(rows []ir.Object) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		if id, ok := row.Get("id").(ir.Int); ok {
			ids[i] = int64(id)
		}
	}
	return ids
}
