// Package render turns provider metadata into the plain-text messages
// sent to users. Provider plot text occasionally carries markup, so every
// free-text field is sanitized before it reaches a message.
package render

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/matthewjhunter/marquee/internal/imdb"
)

var policy = bluemonday.StrictPolicy()

// clean strips any HTML markup from provider text.
func clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// TitleCard is the detail body shown when a user picks a title: name,
// rating, genres, cast and plot, one field per line.
func TitleCard(t *imdb.Title) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", t.DisplayTitle())
	if t.Rating > 0 {
		fmt.Fprintf(&b, "Rating: %.1f\n", t.Rating)
	}
	if len(t.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(t.Genres, ", "))
	}
	if len(t.Cast) > 0 {
		fmt.Fprintf(&b, "Cast: %s\n", strings.Join(t.Cast, ", "))
	}
	if plot := clean(t.Plot); plot != "" {
		fmt.Fprintf(&b, "\n%s\n", plot)
	}
	return b.String()
}

// EpisodeCard is the detail body for a single episode.
func EpisodeCard(ep *imdb.Episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ep.SeriesTitle)
	fmt.Fprintf(&b, "S%s E%d: %s\n", ep.Season, ep.Number, clean(ep.Title))
	if ep.AirDate != "" {
		fmt.Fprintf(&b, "Aired: %s\n", ep.AirDate)
	}
	if plot := clean(ep.Plot); plot != "" {
		fmt.Fprintf(&b, "\n%s\n", plot)
	}
	return b.String()
}

// MovieOut is the release-day notification for a movie alert.
func MovieOut(t *imdb.Title) string {
	return "Movie is out!\n\n" + TitleCard(t)
}

// EpisodeOut is the air-day notification for a series alert.
func EpisodeOut(ep *imdb.Episode) string {
	return "Episode is out!!\n\n" + EpisodeCard(ep)
}

// SeriesFinale is the notification sent when a tracked series has no
// further episodes; the alert has already been removed.
func SeriesFinale(ep *imdb.Episode) string {
	return "Series finale episode! (alert disabled)\n\n" + EpisodeCard(ep)
}

// AlertList formats a user's active alerts, one per line. An empty list
// gets a fixed placeholder message.
func AlertList(names []string) string {
	if len(names) == 0 {
		return "You have no alerts set."
	}
	var b strings.Builder
	b.WriteString("Your alerts:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	return b.String()
}
