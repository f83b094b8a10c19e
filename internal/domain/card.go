package domain

// CardViewModel is the single display-ready structure both rendering
// back-ends consume. It is built once per export operation, is immutable
// afterwards, and is never cached or persisted.
type CardViewModel struct {
	FullName     string
	RoleLabel    string
	RoleColorHex string

	// ZoneCodes holds the full parsed list; renderers display at most
	// the first four.
	ZoneCodes []string
	ZoneNames map[string]string

	CountryName string
	// Age is nil when either the birth date or the event's age
	// calculation year is absent.
	Age *int

	IDNumber    string
	BadgeNumber string

	// Inlined image payloads; empty when the source was missing or
	// unreachable.
	PhotoDataURI        string
	QRDataURI           string
	FlagDataURI         string
	LogoDataURI         string
	BackTemplateDataURI string
	SponsorDataURIs     []string

	EventName      string
	EventLocation  string
	ReportingTimes string

	Expired bool
}

// HasBackContent reports whether a back face should be emitted: either a
// full-bleed template image or a generated access-zone listing.
func (vm CardViewModel) HasBackContent() bool {
	return vm.BackTemplateDataURI != "" || len(vm.ZoneCodes) > 0
}

// DisplayZones returns the zone codes capped to the four slots the layout
// has room for.
func (vm CardViewModel) DisplayZones() []string {
	if len(vm.ZoneCodes) > 4 {
		return vm.ZoneCodes[:4]
	}
	return vm.ZoneCodes
}
