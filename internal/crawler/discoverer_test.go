package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/ignacioe7/tripscan/internal/fetch"
	"github.com/ignacioe7/tripscan/internal/model"
)

// stubGetter serves canned bodies or errors keyed by URL and records the
// order of requests.
type stubGetter struct {
	mu       sync.Mutex
	pages    map[string][]byte
	failures map[string]error
	requests []string
}

func newStubGetter() *stubGetter {
	return &stubGetter{
		pages:    make(map[string][]byte),
		failures: make(map[string]error),
	}
}

func (s *stubGetter) Get(ctx context.Context, rawURL string) (*fetch.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.requests = append(s.requests, rawURL)
	s.mu.Unlock()

	if err, ok := s.failures[rawURL]; ok {
		return nil, err
	}
	body, ok := s.pages[rawURL]
	if !ok {
		return nil, &fetch.Error{Kind: fetch.KindPermanent, URL: rawURL, StatusCode: http.StatusNotFound}
	}
	return &fetch.Result{URL: rawURL, StatusCode: http.StatusOK, Body: body}, nil
}

func (s *stubGetter) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func listingPageHTML(cards string, nextHref string) []byte {
	next := ""
	if nextHref != "" {
		next = fmt.Sprintf(`<a data-smoke-attr="pagination-next-arrow" href=%q>Next</a>`, nextHref)
	}
	return []byte(fmt.Sprintf(`<html><body>%s%s</body></html>`, cards, next))
}

func listingCard(id, name string) string {
	return fmt.Sprintf(`<article>
<a href="/Attraction_Review-g294306-d%s-Reviews-%s.html">x</a>
<div class="XfVdV">%s</div>
<div data-automation="bubbleRatingValue">4.0</div>
<div data-automation="bubbleLabel">25</div>
</article>`, id, name, name)
}

func TestDiscoverer(t *testing.T) {
	t.Parallel()

	region := model.Region{ID: "valparaiso", Name: "Valparaíso", ListingURL: "https://example.com/Attractions-g294306.html"}

	t.Run("walks pagination and dedups", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		getter.pages[region.ListingURL] = listingPageHTML(
			listingCard("100", "Alpha")+listingCard("200", "Beta"),
			"/Attractions-g294306-oa30.html",
		)
		getter.pages["https://example.com/Attractions-g294306-oa30.html"] = listingPageHTML(
			listingCard("200", "Beta")+listingCard("300", "Gamma"),
			"",
		)

		d := NewDiscoverer(getter)
		attractions, err := d.Discover(context.Background(), region)
		if err != nil {
			t.Fatalf("Discover() error: %v", err)
		}
		if len(attractions) != 3 {
			t.Fatalf("got %d attractions, want 3 (duplicate dropped)", len(attractions))
		}
		for i, want := range []string{"100", "200", "300"} {
			if attractions[i].ID != want {
				t.Errorf("attractions[%d].ID = %q, want %q", i, attractions[i].ID, want)
			}
			if attractions[i].RegionID != "valparaiso" {
				t.Errorf("attractions[%d].RegionID = %q", i, attractions[i].RegionID)
			}
			if attractions[i].DiscoveredAt.IsZero() {
				t.Errorf("attractions[%d].DiscoveredAt is zero", i)
			}
		}
	})

	t.Run("first page failure fails discovery", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		getter.failures[region.ListingURL] = &fetch.Error{Kind: fetch.KindTransient, URL: region.ListingURL, StatusCode: 503}

		d := NewDiscoverer(getter)
		_, err := d.Discover(context.Background(), region)
		if !fetch.IsTransient(err) {
			t.Errorf("Discover() error = %v, want wrapped transient fetch error", err)
		}
	})

	t.Run("later page failure returns partial results", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		getter.pages[region.ListingURL] = listingPageHTML(listingCard("100", "Alpha"), "/Attractions-g294306-oa30.html")
		failing := "https://example.com/Attractions-g294306-oa30.html"
		getter.failures[failing] = &fetch.Error{Kind: fetch.KindTransient, URL: failing, StatusCode: 500}

		d := NewDiscoverer(getter)
		attractions, err := d.Discover(context.Background(), region)
		if err == nil {
			t.Fatal("Discover() returned nil error for failed page")
		}
		if len(attractions) != 1 {
			t.Errorf("got %d attractions alongside the error, want 1", len(attractions))
		}
	})

	t.Run("blocked error propagates", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		getter.failures[region.ListingURL] = &fetch.Error{Kind: fetch.KindBlocked, URL: region.ListingURL, StatusCode: 403}

		d := NewDiscoverer(getter)
		_, err := d.Discover(context.Background(), region)
		if !fetch.IsBlocked(err) {
			t.Errorf("Discover() error = %v, want blocked", err)
		}
	})

	t.Run("page cap stops pagination loops", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		// page links back to itself forever
		getter.pages[region.ListingURL] = listingPageHTML(listingCard("100", "Alpha"), "/Attractions-g294306.html")

		d := NewDiscoverer(getter, WithMaxListingPages(5))
		if _, err := d.Discover(context.Background(), region); err != nil {
			t.Fatalf("Discover() error: %v", err)
		}
		if got := getter.requestCount(); got != 5 {
			t.Errorf("fetched %d pages, want 5", got)
		}
	})

	t.Run("attraction cap stops collection early", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		getter.pages[region.ListingURL] = listingPageHTML(
			listingCard("100", "Alpha")+listingCard("200", "Beta")+listingCard("300", "Gamma"),
			"/Attractions-g294306-oa30.html",
		)

		d := NewDiscoverer(getter, WithMaxAttractions(2))
		attractions, err := d.Discover(context.Background(), region)
		if err != nil {
			t.Fatalf("Discover() error: %v", err)
		}
		if len(attractions) != 2 {
			t.Fatalf("got %d attractions, want 2 (capped)", len(attractions))
		}
		if got := getter.requestCount(); got != 1 {
			t.Errorf("fetched %d pages after hitting the cap, want 1", got)
		}
	})

	t.Run("cancellation stops between pages", func(t *testing.T) {
		t.Parallel()

		getter := newStubGetter()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := NewDiscoverer(getter)
		_, err := d.Discover(ctx, region)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Discover() error = %v, want context.Canceled", err)
		}
		if got := getter.requestCount(); got != 0 {
			t.Errorf("fetched %d pages under canceled context, want 0", got)
		}
	})
}
