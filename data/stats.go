package data

// GenreCount is a per-genre record count. The _id key mirrors the group key
// of the aggregation so existing clients keep working.
type GenreCount struct {
	Genre string `json:"_id"`
	Count int64  `json:"count"`
}

// Stats holds the aggregate statistics computed over the full collection.
type Stats struct {
	TotalBooks      int64        `json:"totalBooks"`
	OutOfStockBooks int64        `json:"outOfStockBooks"`
	TotalValue      float64      `json:"totalValue"`
	GenreStats      []GenreCount `json:"genreStats"`
}
