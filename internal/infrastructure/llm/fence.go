package llm

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("(?i)^```[a-z0-9_+#.-]*[ \\t]*(?:\\r?\\n|$)")
	closingFence = regexp.MustCompile("(?m)^[ \\t]*```[ \\t]*\\r?$")
	innerFence   = regexp.MustCompile("(?is)```[a-z0-9_+#.-]*[ \\t]*\\r?\\n(.*?)```")
)

// StripCodeFences removes the fenced-block markup models wrap their answers in.
// A reply that opens with a fence loses the opening line and, when present, the
// text from the closing fence on. A reply with prose around a fenced block keeps only the block.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if loc := openingFence.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
		if end := closingFence.FindStringIndex(s); end != nil {
			s = s[:end[0]]
		}
		return strings.TrimSpace(s)
	}
	if m := innerFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
