package badge

import (
	"fmt"
	"strings"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
)

// Static role banner colors. A zone whose name matches the role
// case-insensitively overrides these per event, so organizers can re-skin
// a role without a code change.
var roleColors = map[string]string{
	"athlete":   "#1D4ED8",
	"coach":     "#047857",
	"media":     "#B45309",
	"official":  "#6D28D9",
	"medical":   "#DC2626",
	"staff":     "#374151",
	"vip":       "#B91C1C",
	"organizer": "#0E7490",
}

const defaultRoleColor = "#6B7280"

// nameFontPx is the 4-tier step function selecting the name font size from
// the combined name length. Both rendering back-ends consume this exact
// function; diverging here makes the two outputs visibly drift apart.
func nameFontPx(fullName string) float64 {
	switch l := len([]rune(fullName)); {
	case l <= 12:
		return 30
	case l <= 18:
		return 26
	case l <= 24:
		return 22
	default:
		return 18
	}
}

// ParseZoneCodes splits a comma-separated zone code field, trimming
// whitespace and dropping empties. Idempotent over its own output.
func ParseZoneCodes(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AgeAt computes whole completed years from the birth date to Dec 31 of the
// calculation year. Only years fully completed strictly before the anchor
// count, so a Dec-31 birthday has not completed its year on the anchor day.
func AgeAt(dob time.Time, calcYear int) int {
	anchor := time.Date(calcYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	age := calcYear - dob.Year()
	if !dob.AddDate(age, 0, 0).Before(anchor) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// resolveRoleColor applies the resolution order: per-event zone override by
// name, static role table, neutral default.
func resolveRoleColor(role string, zones []domain.Zone) string {
	for _, z := range zones {
		if z.Color != "" && strings.EqualFold(z.Name, role) {
			return z.Color
		}
	}
	if c, ok := roleColors[strings.ToLower(strings.TrimSpace(role))]; ok {
		return c
	}
	return defaultRoleColor
}

// BuildViewModel maps a record plus its event and zone list to the
// display-ready card model. Pure and synchronous: image payloads are filled
// in afterwards by the inlining service. Incomplete fields degrade to
// placeholders instead of failing; a card must always render something.
func BuildViewModel(rec domain.AccreditationRecord, event domain.Event, zones []domain.Zone) domain.CardViewModel {
	fullName := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
	if fullName == "" {
		fullName = "UNNAMED"
	}

	role := strings.TrimSpace(rec.Role)
	if role == "" {
		role = "Participant"
	}

	codes := ParseZoneCodes(rec.ZoneCode)
	names := make(map[string]string, len(codes))
	for _, code := range codes {
		for _, z := range zones {
			if strings.EqualFold(z.Code, code) {
				names[code] = z.Name
				break
			}
		}
	}

	var age *int
	if rec.DateOfBirth != nil && event.AgeCalculationYear > 0 {
		a := AgeAt(*rec.DateOfBirth, event.AgeCalculationYear)
		age = &a
	}

	expired := rec.ExpiresAt != nil && rec.ExpiresAt.Before(time.Now())

	return domain.CardViewModel{
		FullName:        strings.ToUpper(fullName),
		RoleLabel:       role,
		RoleColorHex:    resolveRoleColor(role, zones),
		ZoneCodes:       codes,
		ZoneNames:       names,
		CountryName:     CountryName(rec.Nationality),
		Age:             age,
		IDNumber:        rec.AccreditationID,
		BadgeNumber:     rec.BadgeNumber,
		EventName:       event.Name,
		EventLocation:   event.Location,
		ReportingTimes:  event.ReportingTimes,
		Expired:         expired,
		SponsorDataURIs: make([]string, 0, maxSponsorLogos),
	}
}

// maxSponsorLogos caps the sponsor row; the layout has six slots.
const maxSponsorLogos = 6

// FlagURL composes the remote flag image location for an ISO country code.
// Empty when the code is absent so the inliner short-circuits to missing.
func FlagURL(iso string) string {
	iso = strings.ToLower(strings.TrimSpace(iso))
	if len(iso) != 2 {
		return ""
	}
	return fmt.Sprintf("https://flagcdn.com/w80/%s.png", iso)
}

var countryNames = map[string]string{
	"AR": "Argentina", "AU": "Australia", "AT": "Austria", "BE": "Belgium",
	"BR": "Brazil", "CA": "Canada", "CL": "Chile", "CN": "China",
	"HR": "Croatia", "CZ": "Czechia", "DK": "Denmark", "EG": "Egypt",
	"FI": "Finland", "FR": "France", "DE": "Germany", "GR": "Greece",
	"HU": "Hungary", "IN": "India", "ID": "Indonesia", "IE": "Ireland",
	"IL": "Israel", "IT": "Italy", "JP": "Japan", "KE": "Kenya",
	"KR": "South Korea", "MX": "Mexico", "NL": "Netherlands",
	"NZ": "New Zealand", "NO": "Norway", "PL": "Poland", "PT": "Portugal",
	"RO": "Romania", "RS": "Serbia", "SG": "Singapore", "SK": "Slovakia",
	"SI": "Slovenia", "ZA": "South Africa", "ES": "Spain", "SE": "Sweden",
	"CH": "Switzerland", "TH": "Thailand", "TR": "Turkey", "UA": "Ukraine",
	"AE": "United Arab Emirates", "GB": "United Kingdom",
	"US": "United States",
}

// CountryName resolves an ISO code to a display name, falling back to the
// bare code for anything unmapped.
func CountryName(iso string) string {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	if iso == "" {
		return ""
	}
	if n, ok := countryNames[iso]; ok {
		return n
	}
	return iso
}
