package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultVocabulary lists the skip-control labels recognised by the text
// fallback. Each alternative is matched at the start of a node's text.
var DefaultVocabulary = []string{
	`跳过(?:广告|\d)?`,
	`\d+跳过`,
	`关闭广告`,
	`\d+s`,
	`\d+秒`,
}

// CompileVocabulary builds the case-insensitive, start-anchored matcher for
// the given alternatives.
func CompileVocabulary(alternatives []string) (*regexp.Regexp, error) {
	if len(alternatives) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}
	for _, alt := range alternatives {
		if _, err := regexp.Compile(alt); err != nil {
			return nil, fmt.Errorf("vocabulary entry %q: %w", alt, err)
		}
	}
	return regexp.Compile(`(?i)^(?:` + strings.Join(alternatives, "|") + `)`)
}

var defaultMatcher = regexp.MustCompile(`(?i)^(?:` + strings.Join(DefaultVocabulary, "|") + `)`)
