package models

import "time"

// FavoriteItem is a favorited catalog entry. The full record is retained so
// the favorites shelf renders without re-fetching metadata.
type FavoriteItem struct {
	Record  MediaRecord `json:"record"`
	AddedAt time.Time   `json:"addedAt"`
}
