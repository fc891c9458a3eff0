package scratchapi

import (
	"fmt"
	"regexp"
	"strings"
)

var projectURLPattern = regexp.MustCompile(`scratch\.mit\.edu/projects/(\d+)`)

// ExtractProjectID accepts a bare numeric id or any scratch.mit.edu project
// URL (with or without trailing /editor, /fullscreen and so on) and returns
// the numeric id.
func ExtractProjectID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s != "" && isDigits(s) {
		return s, nil
	}
	if m := projectURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("no project id in %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
