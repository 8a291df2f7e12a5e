package application

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bnema/followcheck/internal/domain"
)

var (
	handlePattern      = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
	lowerHandlePattern = regexp.MustCompile(`^[a-z0-9._]{1,30}$`)
	avatarAltPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Za-z0-9._]{1,30})'s profile picture$`),
		regexp.MustCompile(`^Фото профиля ([A-Za-z0-9._]{1,30})$`),
	}
)

// extractor pulls identifiers out of rendered list markup. Each strategy is
// independent; their results are unioned.
type extractor struct {
	reserved map[string]struct{}
	stop     map[string]struct{}
}

func newExtractor(sel CollectorSelectors) extractor {
	x := extractor{
		reserved: make(map[string]struct{}, len(sel.ReservedPaths)),
		stop:     make(map[string]struct{}, len(sel.TextStopWords)),
	}
	for _, path := range sel.ReservedPaths {
		x.reserved[strings.ToLower(path)] = struct{}{}
	}
	for _, word := range sel.TextStopWords {
		x.stop[strings.ToLower(word)] = struct{}{}
	}
	return x
}

func (x extractor) extract(html string) domain.IdentifierSet {
	found := domain.IdentifierSet{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return found
	}

	x.fromAnchors(doc, found)
	x.fromDataAttributes(doc, found)
	x.fromAvatarAlt(doc, found)
	x.fromShortText(doc, found)

	return found
}

func (x extractor) fromAnchors(doc *goquery.Document, found domain.IdentifierSet) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if id, ok := x.identifierFromHref(href); ok {
			found.Add(id)
		}
	})
}

func (x extractor) fromDataAttributes(doc *goquery.Document, found domain.IdentifierSet) {
	doc.Find("[data-username]").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("data-username")
		if handlePattern.MatchString(strings.TrimSpace(value)) {
			found.Add(domain.NormalizeIdentifier(value))
		}
	})
}

func (x extractor) fromAvatarAlt(doc *goquery.Document, found domain.IdentifierSet) {
	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		alt = strings.TrimSpace(alt)
		for _, pattern := range avatarAltPatterns {
			if match := pattern.FindStringSubmatch(alt); match != nil {
				found.Add(domain.NormalizeIdentifier(match[1]))
				return
			}
		}
	})
}

// fromShortText reads leaf text inside list rows. Handles render lowercase, so
// capitalized display names are not mistaken for identifiers.
func (x extractor) fromShortText(doc *goquery.Document, found domain.IdentifierSet) {
	doc.Find("li span, li div, [role='listitem'] span").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if !lowerHandlePattern.MatchString(text) || !strings.ContainsAny(text, "abcdefghijklmnopqrstuvwxyz") {
			return
		}
		if _, stop := x.stop[text]; stop {
			return
		}
		found.Add(domain.NormalizeIdentifier(text))
	})
}

func (x extractor) identifierFromHref(href string) (domain.Identifier, bool) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if parsed.Host != "" && !strings.HasSuffix(strings.ToLower(parsed.Host), "instagram.com") {
		return "", false
	}

	segment := strings.Trim(parsed.Path, "/")
	if segment == "" || strings.Contains(segment, "/") {
		return "", false
	}
	if _, reserved := x.reserved[strings.ToLower(segment)]; reserved {
		return "", false
	}
	if !handlePattern.MatchString(segment) {
		return "", false
	}

	id := domain.NormalizeIdentifier(segment)
	return id, id != ""
}

// visibleText returns the document text without script and style content.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// expectedCountFrom reads the member count shown next to the list link.
func expectedCountFrom(html string, targets []TextTarget) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	for _, target := range targets {
		count := 0
		doc.Find(target.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if len(target.Phrases) > 0 && !containsAny(text, target.Phrases) {
				return true
			}
			for _, candidate := range countCandidates(s, text) {
				if n, ok := domain.ParseCount(candidate); ok && n > 0 {
					count = n
					return false
				}
			}
			return true
		})
		if count > 0 {
			return count
		}
	}

	return 0
}

func countCandidates(s *goquery.Selection, text string) []string {
	var out []string
	if title, ok := s.Attr("title"); ok {
		out = append(out, title)
	}
	if title, ok := s.Find("[title]").First().Attr("title"); ok {
		out = append(out, title)
	}
	return append(out, text)
}
