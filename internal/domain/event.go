package domain

import "time"

// Event is the competition an accreditation record belongs to. The render
// pipeline treats it as read-only input.
type Event struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`

	StartsAt *time.Time `json:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`

	// AgeCalculationYear anchors age computation to a competition season
	// (age on Dec 31 of this year) instead of age at render time.
	AgeCalculationYear int `json:"ageCalculationYear,omitempty"`

	LogoURL         string `json:"logoUrl,omitempty"`
	BackTemplateURL string `json:"backTemplateUrl,omitempty"`

	// SponsorLogos is ordered; the card layout consumes at most six.
	SponsorLogos []string `json:"sponsorLogos,omitempty"`

	ReportingTimes string `json:"reportingTimes,omitempty"`
}

// Zone is an access-area definition. Records reference zones by code via
// string match, not by foreign key; dangling codes must render bare.
type Zone struct {
	ID          string `json:"id"`
	EventID     string `json:"eventId"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}
