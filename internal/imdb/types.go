package imdb

import "fmt"

// The provider returns loosely structured payloads; any field may be
// absent and decodes to its zero value.

// TitleSummary is a single search match.
type TitleSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     string   `json:"kind"`
	Year     int      `json:"year"`
	EndYear  int      `json:"end_year"`
	Plot     string   `json:"plot"`
	Rating   float64  `json:"rating"`
	CoverURL string   `json:"cover_url"`
	Cast     []string `json:"cast"`
	Genres   []string `json:"genres"`
}

// Title is the main-level detail for a movie or series. Seasons holds the
// provider's season keys in its reported order and is empty for movies.
type Title struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     string   `json:"kind"`
	Year     int      `json:"year"`
	EndYear  int      `json:"end_year"`
	Plot     string   `json:"plot"`
	Rating   float64  `json:"rating"`
	CoverURL string   `json:"cover_url"`
	Cast     []string `json:"cast"`
	Genres   []string `json:"genres"`
	Seasons  []string `json:"seasons"`
}

// HasSeasons reports whether the title exposes a season/episode structure.
func (t *Title) HasSeasons() bool {
	return len(t.Seasons) > 0
}

// DisplayTitle is the human-readable name cached on alerts at subscribe
// time, e.g. "Example Movie (2024)".
func (t *Title) DisplayTitle() string {
	if t.Year == 0 {
		return t.Title
	}
	return fmt.Sprintf("%s (%d)", t.Title, t.Year)
}

// EpisodeList groups a series' episodes by season, preserving the
// provider's season and episode order.
type EpisodeList struct {
	Seasons []Season `json:"seasons"`
}

type Season struct {
	Key      string           `json:"season"`
	Episodes []EpisodeSummary `json:"episodes"`
}

// EpisodeSummary is one entry of a season's episode listing. AirDate is
// the raw provider string; it may be empty, "TBA" or otherwise unusable.
type EpisodeSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	AirDate string `json:"air_date"`
}

// Episode is the full detail for a single episode. NextEpisodeID is empty
// when the provider knows no successor.
type Episode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	SeriesTitle   string `json:"series_title"`
	Season        string `json:"season"`
	Number        int    `json:"number"`
	Plot          string `json:"plot"`
	AirDate       string `json:"air_date"`
	NextEpisodeID string `json:"next_episode_id"`
	CoverURL      string `json:"cover_url"`
}

// ReleaseDate is one regional release entry for a movie. Notes carries
// footnote annotations like "premiere" or "limited"; an unannotated entry
// is the general release.
type ReleaseDate struct {
	Country string `json:"country"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}
