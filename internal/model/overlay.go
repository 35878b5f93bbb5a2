package model

// OverlayKind identifies one of the comparison overlays.
type OverlayKind string

const (
	OverlayComparison       OverlayKind = "comparison"
	OverlayAvgOnDate        OverlayKind = "avg_on_date"
	OverlayDayAverage       OverlayKind = "dayaverage"
	OverlayLastYear         OverlayKind = "lastyear"
	OverlayWorkweekPosition OverlayKind = "workweekaverage_position"
	OverlayWorkweekAverage  OverlayKind = "workweekavg"
)

// FallbackKind selects the client-side derivation used when the overlay
// endpoint fails.
type FallbackKind string

const (
	FallbackShift         FallbackKind = "shift"
	FallbackMovingAverage FallbackKind = "moving_average"
)

// DateSource says where an overlay takes its date code from.
type DateSource string

const (
	// DateNone means the endpoint takes no date parameter.
	DateNone DateSource = "none"
	// DatePrimary reuses the date of the loaded primary series.
	DatePrimary DateSource = "primary"
	// DateOwn uses a date supplied with the toggle request.
	DateOwn DateSource = "own"
)

// Endpoint paths on the price backend.
const (
	EndpointPrimary          = "/api/strompreise"
	EndpointComparison       = "/api/strompreise/comparison"
	EndpointAvgOnDate        = "/api/strompreise/avgOnDate"
	EndpointDayAverage       = "/api/strompreise/dayaverage"
	EndpointLastYear         = "/api/strompreise/lastyear"
	EndpointWorkweekPosition = "/api/strompreise/workweekaverage_position"
	EndpointWorkweekAverage  = "/api/strompreise/workweekavg"
)

// OverlayInfo describes how an overlay is fetched, labelled and derived.
type OverlayInfo struct {
	Label      string
	Endpoint   string
	Color      string
	Fallback   FallbackKind
	DateSource DateSource
}

// OverlayCatalog maps every known overlay to its description.
var OverlayCatalog = map[OverlayKind]OverlayInfo{
	OverlayComparison: {
		Label: "Comparison Day", Endpoint: EndpointComparison,
		Color: "rgba(10, 99, 241, 0.9)", Fallback: FallbackShift, DateSource: DateOwn,
	},
	OverlayAvgOnDate: {
		Label: "AVG on Date", Endpoint: EndpointAvgOnDate,
		Color: "rgba(255,165,0,0.9)", Fallback: FallbackMovingAverage, DateSource: DateOwn,
	},
	OverlayDayAverage: {
		Label: "Dayaverage", Endpoint: EndpointDayAverage,
		Color: "rgba(255,165,0,0.9)", Fallback: FallbackMovingAverage, DateSource: DatePrimary,
	},
	OverlayLastYear: {
		Label: "Vorjahr", Endpoint: EndpointLastYear,
		Color: "rgba(100,160,255,0.9)", Fallback: FallbackShift, DateSource: DatePrimary,
	},
	OverlayWorkweekPosition: {
		Label: "AVG Arbeitswoche (Position)", Endpoint: EndpointWorkweekPosition,
		Color: "rgba(43, 93, 173, 0.9)", Fallback: FallbackMovingAverage, DateSource: DateNone,
	},
	OverlayWorkweekAverage: {
		Label: "AVG Arbeitswoche", Endpoint: EndpointWorkweekAverage,
		Color: "rgba(255,165,0,0.9)", Fallback: FallbackMovingAverage, DateSource: DateNone,
	},
}

// OverlayOrder lists overlays in a stable order for iteration.
var OverlayOrder = []OverlayKind{
	OverlayComparison,
	OverlayAvgOnDate,
	OverlayDayAverage,
	OverlayLastYear,
	OverlayWorkweekPosition,
	OverlayWorkweekAverage,
}

// LookupOverlay returns the catalog entry for kind.
func LookupOverlay(kind OverlayKind) (OverlayInfo, bool) {
	info, ok := OverlayCatalog[kind]
	return info, ok
}
