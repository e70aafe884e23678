// Package marquee tracks upcoming movie and TV episode release dates per
// subscribed user and emits a notification exactly once when a tracked
// item becomes available.
package marquee

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/matthewjhunter/marquee/internal/dates"
	"github.com/matthewjhunter/marquee/internal/imdb"
	"github.com/matthewjhunter/marquee/internal/render"
	"github.com/matthewjhunter/marquee/internal/storage"
)

// Engine is the public API for marquee's alert resolution and
// notification pipeline. It wraps the alert store and the metadata
// gateway.
type Engine struct {
	store       *storage.Store
	gateway     Gateway
	searchLimit int
	now         func() time.Time
}

// NewEngine creates an alert engine backed by the given SQLite database.
// The metadata gateway only performs I/O when an operation is called.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.MetadataBaseURL == "" {
		cfg.MetadataBaseURL = "https://api.imdbapi.dev"
	}
	if cfg.MetadataTimeout == 0 {
		cfg.MetadataTimeout = 15 * time.Second
	}
	if cfg.SearchLimit == 0 {
		cfg.SearchLimit = 10
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	gateway := cfg.Gateway
	if gateway == nil {
		client, err := imdb.New(cfg.MetadataBaseURL, cfg.MetadataTimeout)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create metadata client: %w", err)
		}
		gateway = client
	}

	return &Engine{
		store:       store,
		gateway:     gateway,
		searchLimit: cfg.SearchLimit,
		now:         cfg.Now,
	}, nil
}

// Search queries the metadata provider for titles matching the query.
func (e *Engine) Search(ctx context.Context, query string) ([]imdb.TitleSummary, error) {
	return e.gateway.SearchTitles(ctx, query, e.searchLimit)
}

// Title fetches full detail for a single title.
func (e *Engine) Title(ctx context.Context, titleID string) (*imdb.Title, error) {
	return e.gateway.FetchTitle(ctx, titleID)
}

// TitleNames returns the display names of the user's active alerts.
func (e *Engine) TitleNames(userID int64) ([]string, error) {
	return e.store.TitleNames(userID)
}

// TitleIDs returns the provider ids of the user's active alerts.
func (e *Engine) TitleIDs(userID int64) ([]string, error) {
	return e.store.TitleIDs(userID)
}

// Alerts returns every active alert across all users.
func (e *Engine) Alerts() ([]storage.Alert, error) {
	return e.store.All()
}

// HasAlert reports whether the user already has an alert for the title.
// Callers use it to prevent duplicate subscriptions before Enable.
func (e *Engine) HasAlert(userID int64, titleID string) (bool, error) {
	alert, err := e.store.FindOne(userID, titleID)
	if err != nil {
		return false, err
	}
	return alert != nil, nil
}

// Enable resolves the title's next unreleased date and writes an alert
// record when one is found. The outcome is tagged; callers render it to
// text at the transport boundary.
func (e *Engine) Enable(ctx context.Context, userID int64, userName, titleID string) EnableResult {
	title, err := e.gateway.FetchTitle(ctx, titleID)
	if err != nil {
		log.Printf("engine: enable: fetch title %s: %v", titleID, err)
		if errors.Is(err, imdb.ErrUnavailable) {
			return EnableResult{Status: StatusProviderUnavailable}
		}
		return EnableResult{Status: StatusNoReleaseDates}
	}

	if title.HasSeasons() {
		return e.enableSeries(ctx, userID, userName, title)
	}
	return e.enableMovie(ctx, userID, userName, title)
}

// enableMovie resolves a movie's USA release date. Only the unannotated
// USA entry counts; premiere/festival entries carry notes and are skipped.
func (e *Engine) enableMovie(ctx context.Context, userID int64, userName string, title *imdb.Title) EnableResult {
	name := title.DisplayTitle()

	releases, err := e.gateway.FetchReleaseDates(ctx, title.ID)
	if err != nil {
		log.Printf("engine: enable: fetch release dates for %s: %v", title.ID, err)
		if errors.Is(err, imdb.ErrUnavailable) {
			return EnableResult{Status: StatusProviderUnavailable, TitleName: name}
		}
		return EnableResult{Status: StatusNoReleaseDates, TitleName: name}
	}
	if len(releases) == 0 {
		return EnableResult{Status: StatusNoReleaseDates, TitleName: name}
	}

	for _, r := range releases {
		if r.Country != "USA" || r.Notes != "" {
			continue
		}
		date, err := dates.Parse(r.Date, dates.LongMonth)
		if err != nil {
			break
		}
		if !dates.IsFuture(date, e.now()) {
			return EnableResult{
				Status:      StatusAlreadyReleased,
				TitleName:   name,
				ReleaseDate: date,
				RawDate:     r.Date,
			}
		}
		return e.insert(&storage.Alert{
			UserID:      userID,
			UserName:    userName,
			TitleID:     title.ID,
			TitleName:   name,
			ReleaseDate: date,
		})
	}
	return EnableResult{Status: StatusNoUSARelease, TitleName: name}
}

// enableSeries scans the current season (the provider's first season key)
// for the next unaired episode. The scan stops at the first episode
// without a usable air date rather than skipping it.
func (e *Engine) enableSeries(ctx context.Context, userID int64, userName string, title *imdb.Title) EnableResult {
	name := title.DisplayTitle()

	list, err := e.gateway.FetchEpisodeList(ctx, title.ID)
	if err != nil {
		log.Printf("engine: enable: fetch episodes for %s: %v", title.ID, err)
		if errors.Is(err, imdb.ErrUnavailable) {
			return EnableResult{Status: StatusProviderUnavailable, TitleName: name}
		}
		return EnableResult{Status: StatusNoEpisodes, TitleName: name}
	}
	if len(list.Seasons) == 0 || len(list.Seasons[0].Episodes) == 0 {
		return EnableResult{Status: StatusNoEpisodes, TitleName: name}
	}

	season := list.Seasons[0]
	for i, ep := range season.Episodes {
		date, err := dates.Parse(ep.AirDate, dates.ShortMonth)
		if err != nil {
			log.Printf("engine: enable: episode %s of %s has no usable air date %q",
				ep.ID, title.ID, ep.AirDate)
			return EnableResult{Status: StatusNoDateFound, TitleName: name}
		}

		if dates.IsFuture(date, e.now()) {
			return e.insert(&storage.Alert{
				UserID:      userID,
				UserName:    userName,
				TitleID:     title.ID,
				TitleName:   name,
				EpisodeID:   ep.ID,
				ReleaseDate: date,
			})
		}

		if i == len(season.Episodes)-1 {
			return EnableResult{
				Status:      StatusFinaleAired,
				TitleName:   name,
				ReleaseDate: date,
				Season:      season.Key,
				RawDate:     ep.AirDate,
			}
		}
	}
	return EnableResult{Status: StatusNoDateFound, TitleName: name}
}

func (e *Engine) insert(alert *storage.Alert) EnableResult {
	if err := e.store.Insert(alert); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return EnableResult{Status: StatusAlreadySubscribed, TitleName: alert.TitleName}
		}
		log.Printf("engine: insert alert user=%d title=%s: %v", alert.UserID, alert.TitleID, err)
		return EnableResult{Status: StatusStorageUnavailable, TitleName: alert.TitleName}
	}
	return EnableResult{
		Status:      StatusSubscribed,
		TitleName:   alert.TitleName,
		ReleaseDate: alert.ReleaseDate,
	}
}

// Disable removes the user's alert for the title. Removing an absent
// alert is not an error.
func (e *Engine) Disable(userID int64, titleID string) error {
	return e.store.Delete(userID, titleID)
}

// Notify runs one daily tick: every alert due today is re-checked against
// the provider, advanced or finalized, and the resulting notifications are
// returned as (recipient, message) pairs. Processing is independent per
// alert; a fault on one record is logged and does not stop the rest.
func (e *Engine) Notify(ctx context.Context) ([]Notification, error) {
	events, err := e.tick(ctx)
	if err != nil {
		return nil, err
	}

	notifications := make([]Notification, 0, len(events))
	for _, ev := range events {
		notifications = append(notifications, Notification{
			UserID:  ev.UserID,
			Message: renderEvent(ev),
		})
	}
	return notifications, nil
}

func (e *Engine) tick(ctx context.Context) ([]Event, error) {
	today := dates.Day(e.now())

	due, err := e.store.FindDueOn(today)
	if err != nil {
		return nil, fmt.Errorf("query due alerts: %w", err)
	}

	var events []Event
	for _, alert := range due {
		var ev *Event
		var advErr error
		if alert.IsSeries() {
			ev, advErr = e.advanceEpisode(ctx, alert, today)
		} else {
			ev, advErr = e.advanceMovie(ctx, alert, today)
		}
		if advErr != nil {
			log.Printf("engine: tick: alert user=%d title=%s: %v", alert.UserID, alert.TitleID, advErr)
			continue
		}
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, nil
}

// advanceMovie finalizes a due movie alert: the record is deleted and a
// single "movie is out" event emitted. A provider outage reschedules the
// record to tomorrow instead, so the alert is never deleted on a fault.
func (e *Engine) advanceMovie(ctx context.Context, alert storage.Alert, today time.Time) (*Event, error) {
	title, err := e.gateway.FetchTitle(ctx, alert.TitleID)
	if errors.Is(err, imdb.ErrUnavailable) {
		e.retryTomorrow(alert, today)
		return nil, err
	}
	if err != nil {
		// Provider lost the title; notify from the cached name.
		log.Printf("engine: tick: movie %s gone from provider: %v", alert.TitleID, err)
		title = &imdb.Title{ID: alert.TitleID, Title: alert.TitleName, Kind: "movie"}
	}

	if err := e.store.Delete(alert.UserID, alert.TitleID); err != nil {
		return nil, err
	}
	return &Event{Kind: EventMovieOut, UserID: alert.UserID, Title: title}, nil
}

// advanceEpisode advances a due series alert along the next-episode chain.
// With no successor the alert is deleted and a finale event emitted. With
// a successor the record is updated in place: to the successor's date when
// it parses, otherwise to a one-week re-check that keeps the current
// episode id as a placeholder. An "episode is out" event is emitted only
// when the current episode's re-validated air date is today, so weekly
// placeholder re-checks never re-notify.
func (e *Engine) advanceEpisode(ctx context.Context, alert storage.Alert, today time.Time) (*Event, error) {
	current, err := e.gateway.FetchEpisode(ctx, alert.EpisodeID)
	if err != nil {
		if errors.Is(err, imdb.ErrUnavailable) {
			e.retryTomorrow(alert, today)
		}
		return nil, err
	}

	if current.NextEpisodeID == "" {
		if err := e.store.Delete(alert.UserID, alert.TitleID); err != nil {
			return nil, err
		}
		return &Event{Kind: EventSeriesFinale, UserID: alert.UserID, Episode: current}, nil
	}

	next, err := e.gateway.FetchEpisode(ctx, current.NextEpisodeID)
	if err != nil {
		if errors.Is(err, imdb.ErrUnavailable) {
			e.retryTomorrow(alert, today)
		}
		return nil, err
	}

	nextEpisodeID := next.ID
	nextDate, err := dates.Parse(next.AirDate, dates.ShortMonth)
	if err != nil {
		// No usable date for the successor yet: keep the current
		// episode id as a placeholder and re-check in a week.
		nextEpisodeID = alert.EpisodeID
		nextDate = today.AddDate(0, 0, 7)
	}
	if err := e.store.UpdateEpisode(alert.UserID, alert.TitleID, nextEpisodeID, nextDate); err != nil {
		return nil, err
	}

	currentDate, err := dates.Parse(current.AirDate, dates.ShortMonth)
	if err == nil && dates.DueOn(currentDate, today) {
		return &Event{Kind: EventEpisodeOut, UserID: alert.UserID, Episode: current}, nil
	}
	return nil, nil
}

// retryTomorrow pushes a due alert one day out after a transient provider
// fault, since dueness is an exact date match and an untouched record
// would otherwise never be re-checked.
func (e *Engine) retryTomorrow(alert storage.Alert, today time.Time) {
	if err := e.store.UpdateEpisode(alert.UserID, alert.TitleID, alert.EpisodeID, today.AddDate(0, 0, 1)); err != nil {
		log.Printf("engine: tick: reschedule alert user=%d title=%s: %v", alert.UserID, alert.TitleID, err)
	}
}

func renderEvent(ev Event) string {
	switch ev.Kind {
	case EventMovieOut:
		return render.MovieOut(ev.Title)
	case EventEpisodeOut:
		return render.EpisodeOut(ev.Episode)
	case EventSeriesFinale:
		return render.SeriesFinale(ev.Episode)
	}
	return ""
}

// Close releases all resources held by the engine.
func (e *Engine) Close() error {
	return e.store.Close()
}
