package tui

// screen names one state of the console.
type screen int

const (
	screenHome screen = iota
	screenSubmit
	screenAnalyzing
	screenConfirmation
	screenDetails
	screenAuthority
)

func (s screen) String() string {
	switch s {
	case screenHome:
		return "home"
	case screenSubmit:
		return "submit"
	case screenAnalyzing:
		return "analyzing"
	case screenConfirmation:
		return "confirmation"
	case screenDetails:
		return "details"
	case screenAuthority:
		return "authority"
	default:
		return "unknown"
	}
}

// transitions lists every allowed screen change. Anything not here is
// refused by goTo.
var transitions = map[screen][]screen{
	screenHome:         {screenSubmit, screenDetails, screenAuthority},
	screenSubmit:       {screenHome, screenAnalyzing},
	screenAnalyzing:    {screenConfirmation, screenSubmit},
	screenConfirmation: {screenHome, screenDetails},
	screenDetails:      {screenHome, screenAuthority},
	screenAuthority:    {screenDetails, screenHome},
}

func canTransition(from, to screen) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
