// Package bot is the Telegram front end. It translates inline queries,
// commands and button presses into engine calls and pushes the daily
// notifications back out to their recipients.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"

	"github.com/matthewjhunter/marquee"
	"github.com/matthewjhunter/marquee/internal/imdb"
	"github.com/matthewjhunter/marquee/internal/render"
)

// Service is the slice of the alert engine the bot drives.
type Service interface {
	Search(ctx context.Context, query string) ([]imdb.TitleSummary, error)
	Title(ctx context.Context, titleID string) (*imdb.Title, error)
	Enable(ctx context.Context, userID int64, userName, titleID string) marquee.EnableResult
	Disable(userID int64, titleID string) error
	HasAlert(userID int64, titleID string) (bool, error)
	TitleNames(userID int64) ([]string, error)
	TitleIDs(userID int64) ([]string, error)
}

const helpText = `Search for a movie or show by typing its name, or use me
inline in any chat: @ mention me followed by a title.

Commands:
/alerts - list your active alerts
/enable - set an alert for the last title you picked
/disable - remove the alert for the last title you picked
/help - this message`

// Bot wires a telebot instance to the alert engine.
type Bot struct {
	tb       *tele.Bot
	svc      Service
	sessions *sessionStore
}

// New connects to Telegram with the given token and registers all
// handlers. Start must be called to begin polling.
func New(token string, svc Service) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	b := &Bot{tb: tb, svc: svc, sessions: newSessionStore()}
	b.route()
	return b, nil
}

func (b *Bot) route() {
	b.tb.Handle("/start", b.handleHelp)
	b.tb.Handle("/help", b.handleHelp)
	b.tb.Handle("/alerts", b.handleAlerts)
	b.tb.Handle("/enable", b.handleEnableCommand)
	b.tb.Handle("/disable", b.handleDisableCommand)
	b.tb.Handle(tele.OnText, b.handleSearch)
	b.tb.Handle(tele.OnQuery, b.handleInlineQuery)
	b.tb.Handle(&tele.Btn{Unique: "mq_pick"}, b.handlePick)
	b.tb.Handle(&tele.Btn{Unique: "mq_enable"}, b.handleEnableButton)
	b.tb.Handle(&tele.Btn{Unique: "mq_disable"}, b.handleDisableButton)
	b.tb.Handle(&tele.Btn{Unique: "mq_dismiss"}, b.handleDismiss)
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() { b.tb.Start() }

// Stop terminates the poller.
func (b *Bot) Stop() { b.tb.Stop() }

// Dispatch delivers notifications one recipient at a time. A failed send
// is logged and does not block the remaining recipients.
func (b *Bot) Dispatch(notifications []marquee.Notification) {
	for _, n := range notifications {
		if _, err := b.tb.Send(&tele.User{ID: n.UserID}, n.Message); err != nil {
			log.Printf("bot: send to %d: %v", n.UserID, err)
		}
	}
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

func (b *Bot) handleAlerts(c tele.Context) error {
	names, err := b.svc.TitleNames(c.Sender().ID)
	if err != nil {
		log.Printf("bot: list alerts for %d: %v", c.Sender().ID, err)
		return c.Send("Could not load your alerts, please try again later.")
	}
	return c.Send(render.AlertList(names))
}

// handleSearch answers a plain text message with a pick list of matching
// titles.
func (b *Bot) handleSearch(c tele.Context) error {
	query := strings.TrimSpace(c.Text())
	if query == "" {
		return nil
	}

	results, err := b.svc.Search(context.Background(), query)
	if err != nil {
		log.Printf("bot: search %q: %v", query, err)
		return c.Send("Search is unavailable right now, please try again later.")
	}
	if len(results) == 0 {
		return c.Send(fmt.Sprintf("No titles found for %q.", query))
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(results))
	for _, r := range results {
		label := r.Title
		if r.Year != 0 {
			label = fmt.Sprintf("%s (%d)", r.Title, r.Year)
		}
		rows = append(rows, markup.Row(markup.Data(label, "mq_pick", r.ID)))
	}
	rows = append(rows, markup.Row(markup.Data("Dismiss", "mq_dismiss")))
	markup.Inline(rows...)
	return c.Send("Select a title:", markup)
}

// handlePick shows the picked title's card with alert buttons and
// remembers the pick for bare /enable and /disable.
func (b *Bot) handlePick(c tele.Context) error {
	titleID := c.Data()
	title, err := b.svc.Title(context.Background(), titleID)
	if err != nil {
		log.Printf("bot: fetch title %s: %v", titleID, err)
		return c.Respond(&tele.CallbackResponse{Text: "Could not load that title."})
	}

	b.sessions.Put(c.Sender().ID, titleID)

	subscribed, err := b.svc.HasAlert(c.Sender().ID, titleID)
	if err != nil {
		log.Printf("bot: check alert for %d/%s: %v", c.Sender().ID, titleID, err)
	}

	if err := c.Edit(render.TitleCard(title), b.titleMarkup(titleID, subscribed)); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{})
}

// titleMarkup builds the button row under a title card. The alert button
// flips between enable and disable depending on subscription state.
func (b *Bot) titleMarkup(titleID string, subscribed bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	alertBtn := markup.Data("Enable alert", "mq_enable", titleID)
	if subscribed {
		alertBtn = markup.Data("Disable alert", "mq_disable", titleID)
	}
	markup.Inline(
		markup.Row(alertBtn),
		markup.Row(markup.URL("Open on IMDb", imdbURL(titleID))),
		markup.Row(markup.Data("Dismiss", "mq_dismiss")),
	)
	return markup
}

func (b *Bot) handleEnableButton(c tele.Context) error {
	return b.enable(c, c.Data())
}

func (b *Bot) handleEnableCommand(c tele.Context) error {
	titleID, ok := b.sessions.Get(c.Sender().ID)
	if !ok {
		return c.Send("Pick a title first, then use /enable.")
	}
	return b.enable(c, titleID)
}

func (b *Bot) enable(c tele.Context, titleID string) error {
	sender := c.Sender()
	res := b.svc.Enable(context.Background(), sender.ID, displayName(sender), titleID)
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: res.Message(), ShowAlert: true})
	}
	return c.Send(res.Message())
}

func (b *Bot) handleDisableButton(c tele.Context) error {
	return b.disable(c, c.Data())
}

func (b *Bot) handleDisableCommand(c tele.Context) error {
	titleID, ok := b.sessions.Get(c.Sender().ID)
	if !ok {
		return c.Send("Pick a title first, then use /disable.")
	}
	return b.disable(c, titleID)
}

func (b *Bot) disable(c tele.Context, titleID string) error {
	msg := "Alert disabled."
	if err := b.svc.Disable(c.Sender().ID, titleID); err != nil {
		log.Printf("bot: disable %d/%s: %v", c.Sender().ID, titleID, err)
		msg = "Could not remove the alert, please try again later."
	}
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg, ShowAlert: true})
	}
	return c.Send(msg)
}

func (b *Bot) handleDismiss(c tele.Context) error {
	b.sessions.Clear(c.Sender().ID)
	if err := c.Delete(); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Dismissed."})
	}
	return c.Respond(&tele.CallbackResponse{})
}

// handleInlineQuery answers an inline search with article results.
// Titles the sender already tracks are marked in the description.
func (b *Bot) handleInlineQuery(c tele.Context) error {
	query := strings.TrimSpace(c.Query().Text)
	if query == "" {
		return c.Answer(&tele.QueryResponse{Results: tele.Results{}, CacheTime: 5})
	}

	matches, err := b.svc.Search(context.Background(), query)
	if err != nil {
		log.Printf("bot: inline search %q: %v", query, err)
		return c.Answer(&tele.QueryResponse{Results: tele.Results{}, CacheTime: 5})
	}

	tracked := make(map[string]bool)
	if ids, err := b.svc.TitleIDs(c.Sender().ID); err == nil {
		for _, id := range ids {
			tracked[id] = true
		}
	}

	results := make(tele.Results, 0, len(matches))
	for _, m := range matches {
		card := render.TitleCard(&imdb.Title{
			ID:       m.ID,
			Title:    m.Title,
			Kind:     m.Kind,
			Year:     m.Year,
			Plot:     m.Plot,
			Rating:   m.Rating,
			CoverURL: m.CoverURL,
			Cast:     m.Cast,
			Genres:   m.Genres,
		})
		result := &tele.ArticleResult{
			Title:       m.Title,
			Description: inlineDescription(m, tracked[m.ID]),
			Text:        card,
			ThumbURL:    m.CoverURL,
		}
		result.SetResultID(uuid.NewString())
		result.SetReplyMarkup(b.titleMarkup(m.ID, tracked[m.ID]))
		results = append(results, result)
	}

	return c.Answer(&tele.QueryResponse{
		Results:    results,
		CacheTime:  30,
		IsPersonal: true,
	})
}

func inlineDescription(m imdb.TitleSummary, subscribed bool) string {
	parts := make([]string, 0, 3)
	if m.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", m.Year))
	}
	if m.Kind != "" {
		parts = append(parts, m.Kind)
	}
	if subscribed {
		parts = append(parts, "alert set")
	}
	return strings.Join(parts, " · ")
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

func imdbURL(titleID string) string {
	return "https://www.imdb.com/title/" + titleID + "/"
}
