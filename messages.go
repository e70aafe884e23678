package marquee

import "fmt"

// Message renders the subscribe outcome as user-facing text. Kept here so
// transports (Telegram, CLI) share one phrasing.
func (r EnableResult) Message() string {
	switch r.Status {
	case StatusSubscribed:
		return fmt.Sprintf("Alert set for %s.\nRelease date: %s",
			r.TitleName, r.ReleaseDate.Format("2 January 2006"))
	case StatusAlreadySubscribed:
		return fmt.Sprintf("You already have an alert for %s.", r.TitleName)
	case StatusAlreadyReleased:
		return fmt.Sprintf("Released on %s in USA", r.RawDate)
	case StatusFinaleAired:
		return fmt.Sprintf("Season %s finale aired %s", r.Season, r.RawDate)
	case StatusNoDateFound:
		return "Unable to get episode release date"
	case StatusNoEpisodes:
		return "Unable to get series episodes"
	case StatusNoReleaseDates:
		return "No release date found"
	case StatusNoUSARelease:
		return "Unable to find USA release date"
	case StatusProviderUnavailable:
		return "The title service is unavailable right now, please try again later."
	case StatusStorageUnavailable:
		return "Could not save your alert, please try again later."
	}
	return "Unknown result"
}
