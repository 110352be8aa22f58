// Package model defines the core data types shared across civtriage.
package model

import (
	"fmt"
	"time"
)

// Category is the department a report is routed to.
type Category int

const (
	RoadInfrastructure Category = iota
	WasteSanitation
	WaterDrainage
	PublicSafety
	UtilitiesStreetlights
)

// Categories lists every category in the fixed enumeration order. The
// classifier breaks ties by this order, so it must not change.
var Categories = []Category{
	RoadInfrastructure,
	WasteSanitation,
	WaterDrainage,
	PublicSafety,
	UtilitiesStreetlights,
}

func (c Category) String() string {
	switch c {
	case RoadInfrastructure:
		return "road_infrastructure"
	case WasteSanitation:
		return "waste_sanitation"
	case WaterDrainage:
		return "water_drainage"
	case PublicSafety:
		return "public_safety"
	case UtilitiesStreetlights:
		return "utilities_streetlights"
	default:
		return "unknown"
	}
}

// Label returns the human-readable department name.
func (c Category) Label() string {
	switch c {
	case RoadInfrastructure:
		return "Road & Infrastructure"
	case WasteSanitation:
		return "Waste & Sanitation"
	case WaterDrainage:
		return "Water & Drainage"
	case PublicSafety:
		return "Public Safety"
	case UtilitiesStreetlights:
		return "Utilities & Streetlights"
	default:
		return "Unknown"
	}
}

// BaseRisk returns the static risk weight of the category. Unknown
// categories get 50, the midpoint of the table.
func (c Category) BaseRisk() int {
	switch c {
	case PublicSafety:
		return 80
	case RoadInfrastructure:
		return 60
	case UtilitiesStreetlights:
		return 50
	case WaterDrainage:
		return 40
	case WasteSanitation:
		return 30
	default:
		return 50
	}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	return c >= RoadInfrastructure && c <= UtilitiesStreetlights
}

// ParseCategory maps a wire name like "public_safety" to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SeverityLevel is the discrete urgency band derived from a severity total.
type SeverityLevel int

const (
	SeverityLow SeverityLevel = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Levels lists severity levels from most to least urgent.
var Levels = []SeverityLevel{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func (l SeverityLevel) String() string {
	switch l {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// LevelFor maps a 0-100 total onto its band. Thresholds are inclusive
// lower bounds.
func LevelFor(total int) SeverityLevel {
	switch {
	case total >= 80:
		return SeverityCritical
	case total >= 60:
		return SeverityHigh
	case total >= 30:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Color returns the display color for the level as a hex string.
func (l SeverityLevel) Color() string {
	switch l {
	case SeverityCritical:
		return "#dc2626"
	case SeverityHigh:
		return "#f59e0b"
	case SeverityMedium:
		return "#3b82f6"
	case SeverityLow:
		return "#22c55e"
	default:
		return "#6b7280"
	}
}

// ResolutionTarget is the SLA window for a report at this level.
func (l SeverityLevel) ResolutionTarget() time.Duration {
	switch l {
	case SeverityCritical:
		return 4 * time.Hour
	case SeverityHigh:
		return 24 * time.Hour
	case SeverityMedium:
		return 72 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// ExpectedResolution is the citizen-facing wording of the resolution window.
func (l SeverityLevel) ExpectedResolution() string {
	switch l {
	case SeverityCritical:
		return "4 hours"
	case SeverityHigh:
		return "24-48 hours"
	case SeverityMedium:
		return "2-3 days"
	default:
		return "1 week"
	}
}

// ParseSeverityLevel maps "low".."critical" to a SeverityLevel.
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	for _, l := range Levels {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown severity level %q", s)
}

func (l SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *SeverityLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverityLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Status tracks a report through the response workflow.
type Status int

const (
	StatusSubmitted Status = iota
	StatusInProgress
	StatusResolved
)

// Statuses lists statuses in workflow order.
var Statuses = []Status{StatusSubmitted, StatusInProgress, StatusResolved}

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusInProgress:
		return "in_progress"
	case StatusResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Title returns the status as shown in timelines, e.g. "In Progress".
func (s Status) Title() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether a report may move from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusSubmitted:
		return next == StatusInProgress || next == StatusResolved
	case StatusInProgress:
		return next == StatusResolved
	default:
		return false
	}
}

// ParseStatus maps a wire name like "in_progress" to a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
