package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ihub/models"
)

func TestContentScoreWeights(t *testing.T) {
	movie := models.MediaRecord{MediaType: models.KindMovie, Popularity: 12.5, VoteAverage: 7.2}
	assert.InDelta(t, 1000+12.5+72, contentScore(movie, false), 0.001)

	series := models.MediaRecord{MediaType: models.KindSeries, Popularity: 12.5, VoteAverage: 7.2}
	assert.InDelta(t, 12.5+72, contentScore(series, false), 0.001)

	actionDrama := models.MediaRecord{MediaType: models.KindMovie, GenreIDs: []int64{28, 18}}
	assert.InDelta(t, 1000+200, contentScore(actionDrama, false), 0.001)

	documentary := models.MediaRecord{MediaType: models.KindMovie, GenreIDs: []int64{99}}
	assert.InDelta(t, 1000-500, contentScore(documentary, false), 0.001)

	theatrical := models.MediaRecord{MediaType: models.KindMovie, ReleaseType: "Theatrical"}
	assert.InDelta(t, 1200, contentScore(theatrical, true), 0.001)
	// The theatrical bonus only applies in director listings.
	assert.InDelta(t, 1000, contentScore(theatrical, false), 0.001)
}

func TestValidForDisplay(t *testing.T) {
	ok := models.MediaRecord{Title: "Heat", PosterPath: "/p.jpg"}
	assert.True(t, validForDisplay(ok))

	assert.False(t, validForDisplay(models.MediaRecord{Title: "Heat"}), "no poster")
	assert.False(t, validForDisplay(models.MediaRecord{PosterPath: "/p.jpg"}), "no title")
	assert.False(t, validForDisplay(models.MediaRecord{Title: "Heat", PosterPath: "/p.jpg", Adult: true}), "adult")
	assert.False(t, validForDisplay(models.MediaRecord{Name: "Great Anime Collection", PosterPath: "/p.jpg"}), "anime keyword")
}

func TestIsAnimeTitle(t *testing.T) {
	assert.True(t, isAnimeTitle("Best Anime Movies"))
	assert.True(t, isAnimeTitle("Japanese Animation Classics"))
	assert.True(t, isAnimeTitle("The Animated Series"))
	// Accented forms still match after romanization.
	assert.True(t, isAnimeTitle("Añime Nights"))
	assert.False(t, isAnimeTitle("Animal Kingdom"))
	assert.False(t, isAnimeTitle(""))
}

func TestDedupeByIDFirstWins(t *testing.T) {
	records := []models.MediaRecord{
		{ID: "1", Character: "Cobb"},
		{ID: "2"},
		{ID: "1", Job: "Producer"},
		{ID: ""},
	}
	out := dedupeByID(records)
	assert.Len(t, out, 2)
	assert.Equal(t, "Cobb", out[0].Character)
	assert.Empty(t, out[0].Job)
}

func TestSortByContentScoreStable(t *testing.T) {
	records := []models.MediaRecord{
		{ID: "tv1", MediaType: models.KindSeries, Popularity: 50},
		{ID: "m1", MediaType: models.KindMovie, Popularity: 5},
		{ID: "m2", MediaType: models.KindMovie, Popularity: 5},
	}
	sortByContentScore(records, false)

	assert.Equal(t, "m1", records[0].ID)
	assert.Equal(t, "m2", records[1].ID, "equal scores keep upstream order")
	assert.Equal(t, "tv1", records[2].ID)
}
