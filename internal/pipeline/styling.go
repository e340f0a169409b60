package pipeline

import "strings"

// Sources longer than this that already use every marker are not restyled.
const styledMinLength = 3000

var styledMarkers = []string{"gradient", "rounded", "shadow", "hover:"}

// alreadyStyled is a purely syntactic guess that source carries a finished
// visual treatment.
func alreadyStyled(source string) bool {
	if len(source) <= styledMinLength {
		return false
	}
	for _, m := range styledMarkers {
		if !strings.Contains(source, m) {
			return false
		}
	}
	return true
}

// Styling outcomes, as recorded in metrics.
const (
	stylingApplied  = "applied"
	stylingSkipped  = "skipped"
	stylingRejected = "rejected"
	stylingFailed   = "failed"
)
