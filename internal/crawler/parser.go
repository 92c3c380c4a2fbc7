package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/ignacioe7/tripscan/internal/model"
)

// ListingPage is the parsed content of one attraction listing page.
type ListingPage struct {
	// Attractions holds the attraction cards found on the page, in display
	// order. RegionID and DiscoveredAt are left for the caller to fill.
	Attractions []model.Attraction

	// NextURL is the absolute URL of the next listing page, empty on the
	// last page.
	NextURL string

	// Incomplete counts cards that were present but missing required
	// fields (no URL or no name). They are dropped, not guessed at.
	Incomplete int
}

// ReviewPage is the parsed content of one review page.
type ReviewPage struct {
	// Reviews holds the parsed review cards. ID falls back to a content
	// hash when the card exposes no native identifier.
	Reviews []model.Review

	// TotalReviews is the site-reported total for the attraction, 0 when
	// the page does not state one.
	TotalReviews int

	// Incomplete counts cards missing both title and text. They are
	// dropped rather than stored empty.
	Incomplete int
}

// The site obfuscates most class names but keeps stable data-automation
// attributes on the elements that matter. Parsing prefers those and falls
// back to the generated class fragments, which have been stable for long
// stretches in practice.
const (
	selListingCard     = "article"
	selAttractionLink  = `a[href*="/Attraction_Review-"]`
	selCardTitle       = `div[class*="XfVdV"]`
	selRatingValue     = `[data-automation="bubbleRatingValue"]`
	selRatingLabel     = `[data-automation="bubbleLabel"]`
	selCardCategory    = `div[class*="dxkoL"] div[class*="biGQs"][class*="hmDzD"]`
	selNextPage        = `a[data-smoke-attr="pagination-next-arrow"]`
	selReviewCard      = `div[data-automation="reviewCard"]`
	selReviewAuthor    = `a[class*="BMQDV"][class*="ukgoS"]`
	selReviewAuthorAlt = `span[class*="fiohW"]`
	selReviewTitle     = `div[class*="ncFvv"] span[class*="yCeTE"], a[class*="BMQDV"] span[class*="yCeTE"]`
	selReviewText      = `div[class*="KxBGd"]`
	selReviewBubbles   = `svg[class*="UctUV"] title, svg[class*="evwcZ"] title`
	selReviewVisitInfo = `div[class*="RpeCd"]`
	selReviewWritten   = `div[class*="TreSq"] div[class*="ncFvv"]`
	selResultsCount    = `div.Ci`
)

var (
	digitsPattern       = regexp.MustCompile(`\d+`)
	totalReviewsPattern = regexp.MustCompile(`of\s+([\d,]+)`)
)

// ParseListing extracts attraction cards and the next-page link from a
// listing page. baseURL resolves relative hrefs.
func ParseListing(body []byte, baseURL string) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing HTML: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}

	page := &ListingPage{}
	doc.Find(selListingCard).Each(func(i int, card *goquery.Selection) {
		href, ok := card.Find(selAttractionLink).First().Attr("href")
		if !ok {
			// not an attraction card (ads, cross-sell modules)
			return
		}
		absURL := resolveURL(base, href)
		id := model.AttractionIDFromURL(absURL)

		position, name := splitPositionName(cleanText(card.Find(selCardTitle).First().Text()))
		if id == "" || name == "" {
			page.Incomplete++
			return
		}

		a := model.Attraction{
			ID:       id,
			Name:     name,
			URL:      absURL,
			Position: position,
		}
		if ratingText := cleanText(card.Find(selRatingValue).First().Text()); ratingText != "" {
			if rating, err := strconv.ParseFloat(ratingText, 64); err == nil && rating >= 0 && rating <= 5 {
				a.Rating = rating
			}
		}
		if labelText := card.Find(selRatingLabel).First().Text(); labelText != "" {
			a.ReviewCount = parseCount(labelText)
		}
		if cat := cleanText(card.Find(selCardCategory).First().Text()); cat != "" && !strings.ContainsAny(cat, "0123456789") {
			a.Category = cat
		}
		page.Attractions = append(page.Attractions, a)
	})

	if href, ok := doc.Find(selNextPage).First().Attr("href"); ok {
		page.NextURL = resolveURL(base, href)
	}
	return page, nil
}

// ParseReviews extracts review cards and the reported review total from a
// review page. attractionID tags each review; cards without a native review
// identifier get a content-hash ID.
func ParseReviews(body []byte, attractionID string) (*ReviewPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse review HTML: %w", err)
	}

	page := &ReviewPage{}
	doc.Find(selReviewCard).Each(func(i int, card *goquery.Selection) {
		r := parseReviewCard(card, attractionID)
		if r.Title == "" && r.Text == "" {
			page.Incomplete++
			return
		}
		if r.ID == "" {
			r.ID = r.FallbackID()
		}
		page.Reviews = append(page.Reviews, r)
	})

	if m := totalReviewsPattern.FindStringSubmatch(doc.Find(selResultsCount).First().Text()); m != nil {
		page.TotalReviews = parseCount(m[1])
	}
	return page, nil
}

func parseReviewCard(card *goquery.Selection, attractionID string) model.Review {
	r := model.Review{
		AttractionID: attractionID,
		ExtractedAt:  time.Now().UTC(),
	}

	if id, ok := card.Attr("data-reviewid"); ok && id != "" {
		r.ID = id
	} else if id, ok := card.Find("[data-reviewid]").First().Attr("data-reviewid"); ok && id != "" {
		r.ID = id
	}

	r.Author = cleanText(card.Find(selReviewAuthor).First().Text())
	if r.Author == "" {
		r.Author = cleanText(card.Find(selReviewAuthorAlt).First().Text())
	}
	r.Title = cleanText(card.Find(selReviewTitle).First().Text())
	r.Text = joinedText(card.Find(selReviewText).First())
	r.Rating = parseBubbleRating(card.Find(selReviewBubbles).First().Text())

	// The visit line reads "Mar 2025 • Family". Either side may be absent.
	if info := cleanText(card.Find(selReviewVisitInfo).First().Text()); info != "" {
		visitPart, tripPart, found := strings.Cut(info, "•")
		if found {
			r.TripType = cleanText(tripPart)
		}
		if t, ok := parseVisitDate(cleanText(visitPart)); ok {
			r.VisitDate = t
		}
	}
	if written := cleanText(card.Find(selReviewWritten).First().Text()); written != "" {
		if t, ok := parsePostedDate(strings.TrimPrefix(written, "Written ")); ok {
			r.PostedDate = t
		}
	}
	if lang, ok := card.Find("[lang]").First().Attr("lang"); ok {
		r.Language = normalizeLanguage(lang)
	}
	return r
}

// parseBubbleRating reads the accessible title of the bubble rating SVG,
// e.g. "4.0 of 5 bubbles", and returns the integer rating 1..5, 0 when
// absent or malformed.
func parseBubbleRating(title string) int {
	before, _, found := strings.Cut(title, "of")
	if !found {
		return 0
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(before), 64)
	if err != nil || val < 1 || val > 5 {
		return 0
	}
	return int(val)
}

// splitPositionName separates the listing rank from the card title, which
// renders as "3. Cerro Alegre". Titles without a rank pass through whole.
func splitPositionName(title string) (int, string) {
	before, after, found := strings.Cut(title, ".")
	if !found {
		return 0, title
	}
	pos, err := strconv.Atoi(strings.TrimSpace(before))
	if err != nil {
		return 0, title
	}
	return pos, strings.TrimSpace(after)
}

// parseCount extracts the first run of digits from text that may carry
// thousands separators, e.g. "1,204 reviews".
func parseCount(text string) int {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	m := digitsPattern.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

var postedDateFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
}

func parsePostedDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, format := range postedDateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var visitDateFormats = []string{
	"Jan 2006",
	"January 2006",
}

func parseVisitDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, format := range visitDateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeLanguage canonicalizes a declared language attribute to a BCP 47
// tag, e.g. "EN-us" to "en-US". Unparseable tags come back empty.
func normalizeLanguage(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	return t.String()
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinedText collects all descendant text of sel into one space-separated
// string, the way the site splits review bodies across nested spans.
func joinedText(sel *goquery.Selection) string {
	return cleanText(sel.Text())
}

// resolveURL makes href absolute against base and strips query and fragment,
// which carry session tracking rather than identity.
func resolveURL(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	abs.RawQuery = ""
	abs.Fragment = ""
	return abs.String()
}
