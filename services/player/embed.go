package player

import (
	"fmt"

	"ihub/models"
)

// Provider identifies one of the embed stream providers.
type Provider string

const (
	ProviderPrimary  Provider = "primary"
	ProviderFallback Provider = "fallback"
)

const (
	primaryHost  = "https://vidsrc.to"
	fallbackHost = "https://vidsrc.me"
)

// MediaRef names a playable title, plus season and episode for series. URL
// carries an optional deep-link that replaces the primary embed URL; the
// fallback provider is still addressed by identifier.
type MediaRef struct {
	ID        string           `json:"id"`
	MediaType models.MediaKind `json:"mediaType"`
	Season    int              `json:"season,omitempty"`
	Episode   int              `json:"episode,omitempty"`
	URL       string           `json:"url,omitempty"`
}

func (m MediaRef) key() string {
	return fmt.Sprintf("%s:%s:%d:%d", m.MediaType, m.ID, m.Season, m.Episode)
}

// EmbedURL builds the provider's embed page URL for a title. The two
// providers use different URL shapes for the same catalog identifiers.
func EmbedURL(provider Provider, media MediaRef) string {
	switch provider {
	case ProviderFallback:
		if media.MediaType == models.KindSeries {
			return fmt.Sprintf("%s/embed/tv?tmdb=%s&season=%d&episode=%d", fallbackHost, media.ID, media.Season, media.Episode)
		}
		return fmt.Sprintf("%s/embed/movie?tmdb=%s", fallbackHost, media.ID)
	default:
		if media.MediaType == models.KindSeries {
			return fmt.Sprintf("%s/embed/tv/%s/%d/%d", primaryHost, media.ID, media.Season, media.Episode)
		}
		return fmt.Sprintf("%s/embed/movie/%s", primaryHost, media.ID)
	}
}
