package inference

import "strings"

// Category labels produced by Categorize. Ordering of the rules matters:
// earlier rules win when several match.
const (
	CategoryConcerts   = "Concerts"
	CategoryClubEvents = "Club Events"
	CategoryDayParties = "Day Parties"
	CategoryParties    = "Parties"
	CategoryGeneral    = "General Events"
)

var concertKeywords = []string{
	"concert", "live music", "band", "tour", "performing live",
	"album release", "dj set", "orchestra", "symphony",
}

var clubKeywords = []string{
	"club", "nightclub", "nightlife", "lounge", "bottle service", "afterparty",
	"after party",
}

var dayPartyKeywords = []string{
	"day party", "pool party", "brunch", "rooftop day", "daytime",
}

var partyKeywords = []string{
	"party", "celebration", "bash", "mixer", "social",
}

// Categorize assigns a best-effort category label by checking tags, venue
// subtype and name/description keywords against an ordered rule set.
func Categorize(raw RawEvent) string {
	text := strings.ToLower(raw.Name + " " + raw.Description)
	tags := strings.ToLower(strings.Join(raw.Tags, " "))
	venue := strings.ToLower(raw.VenueSubtype)

	if matchesAny(text, concertKeywords) || matchesAny(tags, concertKeywords) ||
		strings.Contains(tags, "music") || strings.Contains(venue, "music_venue") ||
		strings.Contains(venue, "concert_hall") {
		return CategoryConcerts
	}

	// Club events only count in the evening and at night.
	if isEveningOrNight(raw) &&
		(matchesAny(text, clubKeywords) || strings.Contains(venue, "night_club") ||
			strings.Contains(venue, "bar")) {
		return CategoryClubEvents
	}

	// Day parties need a midday start.
	if isMidday(raw) && matchesAny(text, dayPartyKeywords) {
		return CategoryDayParties
	}

	if matchesAny(text, partyKeywords) || matchesAny(tags, partyKeywords) {
		return CategoryParties
	}

	return CategoryGeneral
}

func matchesAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func isEveningOrNight(raw RawEvent) bool {
	if raw.Start == nil {
		return false
	}
	h := raw.Start.Hour()
	return h >= 18 || h < 4
}

func isMidday(raw RawEvent) bool {
	if raw.Start == nil {
		return false
	}
	h := raw.Start.Hour()
	return h >= 10 && h <= 17
}
