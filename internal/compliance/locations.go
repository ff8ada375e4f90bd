package compliance

import (
	"regexp"
	"strings"
)

var locationPatterns = []struct {
	label    string
	patterns []*regexp.Regexp
}{
	{LocationQatar, compileAll(`\bqatar\b`, `state of qatar`, `within qatar`, `in qatar`, `qatar\s+region`)},
	{LocationIreland, compileAll(`\bireland\b`, `irish\s+region`)},
	{LocationSingapore, compileAll(`\bsingapore\b`)},
	{LocationDubai, compileAll(`\bdubai\b`, `in dubai`)},
	{LocationUAE, compileAll(`\buae\b`, `united arab emirates`)},
}

// detectLocations merges the fixed jurisdiction patterns with any place
// names reported by places. Labels are canonical and appear once, in
// detection order.
func detectLocations(text, lower string, places PlaceRecognizer) []string {
	found := make([]string, 0, len(locationPatterns))
	add := func(label string) {
		for _, l := range found {
			if l == label {
				return
			}
		}
		found = append(found, label)
	}

	for _, loc := range locationPatterns {
		for _, re := range loc.patterns {
			if re.MatchString(lower) {
				add(loc.label)
				break
			}
		}
	}

	for _, name := range recognizePlaces(places, text) {
		name = strings.TrimSpace(name)
		if strings.Contains(name, LocationQatar) {
			add(LocationQatar)
			continue
		}
		if label, ok := canonicalLocation(name); ok {
			add(label)
		}
	}

	return found
}

// recognizePlaces runs the optional recognizer. Any failure, including a
// panic inside the recognizer, is treated as "no extra places".
func recognizePlaces(places PlaceRecognizer, text string) (names []string) {
	if places == nil || text == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			names = nil
		}
	}()

	names, err := places.RecognizePlaces(text)
	if err != nil {
		return nil
	}
	return names
}

// canonicalLocation maps a free place name to the first canonical label it contains.
func canonicalLocation(name string) (string, bool) {
	lowerName := strings.ToLower(name)
	for _, loc := range locationPatterns {
		if strings.Contains(lowerName, strings.ToLower(loc.label)) {
			return loc.label, true
		}
	}
	return "", false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
