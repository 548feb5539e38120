package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/nba-ingest/internal/fetch"
)

// BRefBox is the normalized form of a reference-site box score page: final
// outcomes plus starting lineups.
type BRefBox struct {
	HomeTricode string
	AwayTricode string
	HomeScore   *int
	AwayScore   *int
	Attendance  *int
	ArenaName   string
	Starters    []BRefStarter
}

// BRefStarter is one starting-lineup slot scraped from a per-team basic box
// table.
type BRefStarter struct {
	TeamTricode string
	PlayerName  string
}

var (
	teamHrefRe   = regexp.MustCompile(`/teams/([A-Z]{3})/`)
	attendanceRe = regexp.MustCompile(`Attendance:\s*([\d,]+)`)
	boxTableIDRe = regexp.MustCompile(`^box-([A-Z]{3})-game-basic$`)
)

// BRefBoxScore extracts outcomes and starters from a box score page. The
// scorebox lists the away team first, matching the site's layout.
func BRefBoxScore(body []byte) (*BRefBox, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Source: fetch.SourceBRef, Message: "failed to parse HTML", Cause: err}
	}

	box := &BRefBox{}

	teams := doc.Find("div.scorebox > div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find("a[href*='/teams/']").Length() > 0
	})
	if teams.Length() < 2 {
		return nil, &Error{Source: fetch.SourceBRef, Message: "scorebox missing team blocks"}
	}

	readTeam := func(s *goquery.Selection) (tricode string, score *int) {
		href, _ := s.Find("a[href*='/teams/']").First().Attr("href")
		if m := teamHrefRe.FindStringSubmatch(href); m != nil {
			tricode = m[1]
		}
		scoreText := strings.TrimSpace(s.Find("div.score").First().Text())
		if n, err := strconv.Atoi(scoreText); err == nil {
			score = &n
		}
		return tricode, score
	}

	box.AwayTricode, box.AwayScore = readTeam(teams.Eq(0))
	box.HomeTricode, box.HomeScore = readTeam(teams.Eq(1))
	if box.HomeTricode == "" || box.AwayTricode == "" {
		return nil, &Error{Source: fetch.SourceBRef, Message: "could not resolve team tricodes"}
	}

	meta := doc.Find("div.scorebox_meta").Text()
	if m := attendanceRe.FindStringSubmatch(meta); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			box.Attendance = &n
		}
	}
	doc.Find("div.scorebox_meta div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.Contains(text, "Arena") {
			box.ArenaName = strings.TrimSpace(strings.SplitN(text, ",", 2)[0])
			return false
		}
		return true
	})

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		id, _ := tbl.Attr("id")
		m := boxTableIDRe.FindStringSubmatch(id)
		if m == nil {
			return
		}
		tricode := m[1]
		// The first five data rows of each basic box table are the
		// starters; the "Reserves" header row ends the section.
		count := 0
		tbl.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if tr.HasClass("thead") {
				return false
			}
			name := strings.TrimSpace(tr.Find("th a").First().Text())
			if name == "" {
				return true
			}
			box.Starters = append(box.Starters, BRefStarter{
				TeamTricode: tricode,
				PlayerName:  name,
			})
			count++
			return count < 5
		})
	})

	return box, nil
}

// BRefBoxSlug builds the page slug for a box score, used when probing
// alternate dates for postponed games.
func BRefBoxSlug(yyyymmdd, homeTricode string) string {
	return fmt.Sprintf("%s0%s.html", yyyymmdd, homeTricode)
}
