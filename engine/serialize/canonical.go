package serialize

import (
	"regexp"
	"strings"

	"github.com/compozy/bomkit/engine/tree"
)

var (
	// "\r\n" is listed first so it is replaced as one unit.
	whitespaceReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ")
	spaceRuns          = regexp.MustCompile(` {2,}`)
)

// Canonicalize applies the XML Schema lexical rules of t to s. normalizedString replaces
// every line break and tab with a space; token additionally trims and collapses spaces.
func Canonicalize(s string, t tree.StringType) string {
	switch t {
	case tree.StringNormalized:
		return whitespaceReplacer.Replace(s)
	case tree.StringToken:
		s = strings.Trim(whitespaceReplacer.Replace(s), " ")
		return spaceRuns.ReplaceAllString(s, " ")
	default:
		return s
	}
}
