package aggregator

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"eventscout/internal/geo"
	"eventscout/pkg/models"
)

// Rank orders events. An explicit sort key uses a direct comparator on that
// field; otherwise events are scored against the user's preferences. All
// comparators are total and defensive — an unparsable date or missing
// coordinate can never panic a sort, it just ranks the event last (or leaves
// it in place for distance).
func Rank(events []models.Event, req models.SearchRequest) []models.Event {
	out := append([]models.Event(nil), events...)

	switch req.Sort {
	case models.SortDate:
		sort.SliceStable(out, func(i, j int) bool {
			ti, oki := parseEventStart(out[i])
			tj, okj := parseEventStart(out[j])
			if !oki {
				return false // unparsable sorts last
			}
			if !okj {
				return true
			}
			return ti.Before(tj)
		})
	case models.SortPopularity:
		sort.SliceStable(out, func(i, j int) bool {
			return attendeeCount(out[i]) > attendeeCount(out[j])
		})
	case models.SortPrice:
		sort.SliceStable(out, func(i, j int) bool {
			pi, oki := priceValue(out[i].Price)
			pj, okj := priceValue(out[j].Price)
			if !oki {
				return false // unknown price sorts last
			}
			if !okj {
				return true
			}
			return pi < pj
		})
	case models.SortDistance:
		if req.Coordinates == nil {
			return out // no origin, no reordering
		}
		origin := *req.Coordinates
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Coordinates == nil || out[j].Coordinates == nil {
				return false // missing coordinates keep their position
			}
			return geo.Haversine(origin, *out[i].Coordinates) < geo.Haversine(origin, *out[j].Coordinates)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return preferenceScore(out[i], req.Preferences) > preferenceScore(out[j], req.Preferences)
		})
	}
	return out
}

// Preference scoring weights.
const (
	favoriteCategoryBonus = 10.0
	priceBandBonus        = 5.0
	timeOfDayBonus        = 3.0
)

// preferenceScore combines category affinity, price-band fit, time-of-day
// fit, and log-scaled popularity.
func preferenceScore(e models.Event, prefs *models.Preferences) float64 {
	score := math.Log(float64(attendeeCount(e)) + 1)
	if prefs == nil {
		return score
	}

	for _, fav := range prefs.FavoriteCategories {
		if strings.EqualFold(strings.TrimSpace(fav), e.Category) {
			score += favoriteCategoryBonus
			break
		}
	}

	if matchesPriceBand(e.Price, prefs.PricePreference) {
		score += priceBandBonus
	}
	if matchesTimeOfDay(e.Time, prefs.TimePreference) {
		score += timeOfDayBonus
	}
	return score
}

func attendeeCount(e models.Event) int {
	if e.Attendees == nil {
		return 0
	}
	return *e.Attendees
}

var priceNumber = regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)`)

// priceValue extracts a comparable number from a display price. The second
// return is false for "Price TBA" and anything else unparsable.
func priceValue(display string) (float64, bool) {
	if strings.EqualFold(strings.TrimSpace(display), "free") {
		return 0, true
	}
	m := priceNumber.FindStringSubmatch(display)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchesPriceBand(display, pref string) bool {
	switch pref {
	case "", models.PrefAny:
		return false
	}
	v, ok := priceValue(display)
	if !ok {
		return false
	}
	switch pref {
	case models.PriceFree:
		return v == 0
	case models.PriceLow:
		return v > 0 && v < 20
	case models.PriceMedium:
		return v >= 20 && v <= 75
	case models.PriceHigh:
		return v > 75
	}
	return false
}

func matchesTimeOfDay(display, pref string) bool {
	switch pref {
	case "", models.PrefAny:
		return false
	}
	t, err := time.Parse("3:04 PM", strings.TrimSpace(display))
	if err != nil {
		return false
	}
	h := t.Hour()
	switch pref {
	case models.TimeMorning:
		return h >= 5 && h < 12
	case models.TimeAfternoon:
		return h >= 12 && h < 17
	case models.TimeEvening:
		return h >= 17 && h < 21
	case models.TimeNight:
		return h >= 21 || h < 5
	}
	return false
}

// parseEventStart re-parses the display date/time pair. Events whose
// provider gave no usable start ("TBA") report ok=false and sort last.
func parseEventStart(e models.Event) (time.Time, bool) {
	if e.Date == models.DateTBA || e.Date == "" {
		return time.Time{}, false
	}
	if e.Time != models.TimeTBA && e.Time != "" {
		if t, err := time.Parse("Jan 2, 2006 3:04 PM", e.Date+" "+e.Time); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("Jan 2, 2006", e.Date); err == nil {
		return t, true
	}
	return time.Time{}, false
}
