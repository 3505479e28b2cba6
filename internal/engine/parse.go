package engine

import (
	"strings"

	"eduquest/internal/catalog"
)

var subjectAliases = map[string]string{
	"math":  "Mathematics",
	"maths": "Mathematics",
	"sci":   "Science",
	"eng":   "English",
	"art":   "Arts & Creativity",
	"arts":  "Arts & Creativity",
	"logic": "Logic & Critical Thinking",
	"phys":  "Physics",
	"chem":  "Chemistry",
	"bio":   "Biology",
	"geo":   "Geography",
	"lit":   "Literature",
}

// ParseSubject maps user input to a catalog subject. It accepts the exact
// name in any case, a known alias, or a unique prefix.
func ParseSubject(cat *catalog.Catalog, input string) (string, bool) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return "", false
	}
	if name, ok := subjectAliases[s]; ok && cat.HasSubject(name) {
		return name, true
	}
	var match string
	for _, name := range cat.Subjects {
		lower := strings.ToLower(name)
		if lower == s {
			return name, true
		}
		if strings.HasPrefix(lower, s) {
			if match != "" {
				return "", false
			}
			match = name
		}
	}
	return match, match != ""
}
