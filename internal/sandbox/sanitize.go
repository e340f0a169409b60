// Package sandbox rewrites rendered documents so they cannot leave the frame
// they are displayed in.
package sandbox

import (
	"regexp"
	"strings"
)

// NavigationBlocked replaces every neutralized navigation statement. It is an
// expression so it stays valid in arrow bodies and operands.
const NavigationBlocked = "void 0 /* navigation blocked */"

const navValue = `(?:\\?"[^"\n]*?\\?"|\\?'[^'\n]*?\\?'|` + "`[^`\\n]*`" + `|[A-Za-z_$][\w$.]*(?:\([^()]*\))?)`

var (
	openTag        = regexp.MustCompile(`<[a-zA-Z][^<>]*>`)
	targetAttr     = regexp.MustCompile(`(?i)\s+target\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+)`)
	javascriptHref = regexp.MustCompile(`(?i)\bhref\s*=\s*(?:"\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s>]*)`)

	// Matches never consume a trailing separator, so adjacent statements are
	// all neutralized in one pass.
	navAssign = regexp.MustCompile(`(^|[^.\w$])(?:(?:window|self|document|top|parent)\s*\.\s*)?(?:(?:top|parent)\s*\.\s*)?location(?:\s*\.\s*href)?\s*=\s*` +
		navValue + `(?:\s*\+\s*` + navValue + `)*`)
	navCall = regexp.MustCompile(`(^|[^.\w$])(?:(?:window|self|document|top|parent)\s*\.\s*)?location\s*\.\s*(?:assign|replace)\s*\([^()]*\)`)
	winOpen = regexp.MustCompile(`(^|[^.\w$])window\s*\.\s*open\s*\([^()]*\)`)
)

// Sanitize strips target attributes, neutralizes javascript: links and replaces
// expressions that would navigate the frame or open new windows. Applying it to
// its own output changes nothing.
func Sanitize(doc string) string {
	out := openTag.ReplaceAllStringFunc(doc, func(tag string) string {
		return targetAttr.ReplaceAllString(tag, "")
	})
	out = javascriptHref.ReplaceAllString(out, `href="#"`)
	out = blockAssignments(out)
	out = navCall.ReplaceAllString(out, "${1}"+NavigationBlocked)
	out = winOpen.ReplaceAllString(out, "${1}"+NavigationBlocked)
	return out
}

// blockAssignments neutralizes location assignments. A local variable that
// happens to be named location is left alone.
func blockAssignments(doc string) string {
	var b strings.Builder
	last := 0
	for _, m := range navAssign.FindAllStringSubmatchIndex(doc, -1) {
		if declares(doc[:m[3]]) {
			continue
		}
		b.WriteString(doc[last:m[3]])
		b.WriteString(NavigationBlocked)
		last = m[1]
	}
	b.WriteString(doc[last:])
	return b.String()
}

var declKeyword = regexp.MustCompile(`(?:^|[^\w$])(?:const|let|var)\s*$`)

func declares(before string) bool {
	if len(before) > 16 {
		before = before[len(before)-16:]
	}
	return declKeyword.MatchString(before)
}

// Isolate sanitizes doc and installs the virtual router.
func Isolate(doc string) string {
	return InjectRouter(Sanitize(doc))
}
