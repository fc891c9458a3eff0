package pack

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFileNameLen = 200

var projectFilePattern = regexp.MustCompile(`-(\d+)-project$`)

// SanitizeFileName makes a project title safe to use as a filename:
// filesystem-reserved characters become underscores, surrounding dots and
// spaces are dropped, whitespace runs collapse to one space, and overlong
// names are cut. An empty result falls back to "untitled".
func SanitizeFileName(name string) string {
	for _, c := range `<>:"/\|?*` {
		name = strings.ReplaceAll(name, string(c), "_")
	}
	name = strings.Trim(name, ". ")
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) > maxFileNameLen {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:maxFileNameLen]))
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// ProjectIDFromFilename recovers the project id from download-style names,
// <title>-<id>-project.sb3 or .json. It returns "" when the name does not
// follow that shape.
func ProjectIDFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if m := projectFilePattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return ""
}
