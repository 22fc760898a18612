package ai

import (
	"errors"
	"regexp"
	"strings"
)

const maxTipLen = 200

var (
	markdownRegex  = regexp.MustCompile("[*_`#>]+")
	spaceRegex     = regexp.MustCompile(`\s+`)
	bulletRegex    = regexp.MustCompile(`^(?:[-•]|\d+[.)])\s*`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseTip reduces model output to a single plain sentence.
func ParseTip(text string) (string, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	first := ""
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			first = l
			break
		}
	}
	first = bulletRegex.ReplaceAllString(first, "")
	first = markdownRegex.ReplaceAllString(first, "")
	first = spaceRegex.ReplaceAllString(first, " ")
	first = strings.Trim(first, ` "'`)
	if first == "" {
		return "", ErrParseFailed
	}
	if r := []rune(first); len(r) > maxTipLen {
		first = strings.TrimSpace(string(r[:maxTipLen-1])) + "…"
	}
	return first, nil
}
