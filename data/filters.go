package data

// Filters holds the sort selection for a book listing.
type Filters struct {
	SortBy    string
	SortOrder string
}

// sortColumns maps the accepted sort keys to their database columns.
var sortColumns = map[string]string{
	"title":     "title",
	"author":    "author",
	"price":     "price",
	"genre":     "genre",
	"createdAt": "created_at",
}

// SortColumn returns the database column to sort on. An unknown sort key
// falls back to created_at rather than failing the request.
func (f Filters) SortColumn() string {
	if column, ok := sortColumns[f.SortBy]; ok {
		return column
	}
	return "created_at"
}

// SortDirection returns ASC or DESC. Anything other than an explicit "asc"
// sorts descending, which is also the default.
func (f Filters) SortDirection() string {
	if f.SortOrder == "asc" {
		return "ASC"
	}
	return "DESC"
}
