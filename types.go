package marquee

import (
	"context"
	"time"

	"github.com/matthewjhunter/marquee/internal/imdb"
)

// EngineConfig configures the marquee alert engine.
type EngineConfig struct {
	DBPath          string
	MetadataBaseURL string
	MetadataTimeout time.Duration
	SearchLimit     int

	// Gateway overrides the HTTP metadata client; used by tests.
	Gateway Gateway
	// Now overrides the engine clock; used by tests.
	Now func() time.Time
}

// Gateway is the metadata provider the engine consults. The imdb package
// provides the production implementation.
type Gateway interface {
	SearchTitles(ctx context.Context, query string, limit int) ([]imdb.TitleSummary, error)
	FetchTitle(ctx context.Context, titleID string) (*imdb.Title, error)
	FetchEpisodeList(ctx context.Context, titleID string) (*imdb.EpisodeList, error)
	FetchEpisode(ctx context.Context, episodeID string) (*imdb.Episode, error)
	FetchReleaseDates(ctx context.Context, titleID string) ([]imdb.ReleaseDate, error)
}

// EnableStatus tags the outcome of a subscribe attempt.
type EnableStatus int

const (
	// StatusSubscribed means an alert record was written.
	StatusSubscribed EnableStatus = iota
	// StatusAlreadySubscribed means the (user, title) pair already has an alert.
	StatusAlreadySubscribed
	// StatusAlreadyReleased means the movie's USA release date is in the past.
	StatusAlreadyReleased
	// StatusFinaleAired means the current season's last episode already aired.
	StatusFinaleAired
	// StatusNoDateFound means an episode lacked a usable air date.
	StatusNoDateFound
	// StatusNoEpisodes means the series exposes no episode data.
	StatusNoEpisodes
	// StatusNoReleaseDates means the movie has no release-date list.
	StatusNoReleaseDates
	// StatusNoUSARelease means no unannotated USA entry carried a valid date.
	StatusNoUSARelease
	// StatusProviderUnavailable is transient; the user should retry.
	StatusProviderUnavailable
	// StatusStorageUnavailable is transient; the alert was not written.
	StatusStorageUnavailable
)

// EnableResult is the tagged outcome of Enable. Text rendering happens at
// the transport boundary via Message.
type EnableResult struct {
	Status      EnableStatus
	TitleName   string
	ReleaseDate time.Time // subscribed / already released / finale
	Season      string    // finale only
	RawDate     string    // provider's date fragment, for messages
}

// EventKind tags a notification-worthy state transition from the daily tick.
type EventKind int

const (
	// EventMovieOut: a movie alert's release date arrived; alert deleted.
	EventMovieOut EventKind = iota
	// EventEpisodeOut: the tracked episode aired today; alert advanced.
	EventEpisodeOut
	// EventSeriesFinale: the tracked episode has no successor; alert deleted.
	EventSeriesFinale
)

// Event is one state transition produced by the daily tick. Title is set
// for movie events, Episode for episode and finale events.
type Event struct {
	Kind    EventKind
	UserID  int64
	Title   *imdb.Title
	Episode *imdb.Episode
}

// Notification is one (recipient, message) pair for the dispatcher to
// deliver. Deliveries are independent; one failure must not block the rest.
type Notification struct {
	UserID  int64
	Message string
}
