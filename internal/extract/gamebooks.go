package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/jonathan/nba-ingest/internal/fetch"
)

// GamebookCrew is the officiating crew listed on a gamebook. The payload is
// the text rendition of the PDF; the conversion itself happens upstream.
type GamebookCrew struct {
	Officials  []string // in crew order: chief, referee, umpire
	Alternates []string
}

var refNumberRe = regexp.MustCompile(`\s*\(#\d+\)`)

// GamebookOfficials parses the OFFICIALS and ALTERNATES lines out of a
// gamebook text payload. Jersey numbers like "(#14)" are stripped.
func GamebookOfficials(body []byte) (*GamebookCrew, error) {
	crew := &GamebookCrew{}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "OFFICIALS:"):
			crew.Officials = splitNames(line[len("OFFICIALS:"):])
		case strings.HasPrefix(upper, "ALTERNATES:"):
			crew.Alternates = splitNames(line[len("ALTERNATES:"):])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Source: fetch.SourceGamebooks, Message: "failed to scan gamebook text", Cause: err}
	}

	if len(crew.Officials) == 0 {
		return nil, &Error{Source: fetch.SourceGamebooks, Message: "no OFFICIALS line found"}
	}
	return crew, nil
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(refNumberRe.ReplaceAllString(part, ""))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
