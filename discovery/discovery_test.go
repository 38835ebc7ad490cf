package discovery

import (
	"EstateHub/models"
	"EstateHub/session"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticReader session.State

func (r staticReader) State() session.State { return session.State(r) }

func member() staticReader {
	return staticReader{Session: &session.Session{UID: "u1", Name: "Asha", Email: "asha@example.com", Role: models.RoleMember}}
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

func TestNormalizeListingFieldVariants(t *testing.T) {
	l := NormalizeListing(map[string]interface{}{
		"_id":       "65f0c0ffee",
		"title":     "Sea View",
		"address":   "Marine Drive",
		"price":     "₹ 1,20,00,000",
		"status":    "For_Sale",
		"image_url": "a.jpg",
		"images":    []interface{}{"a.jpg", "b.jpg"},
		"latitude":  18.94,
		"lon":       72.82,
		"details":   "3 Beds | 2 Baths | 1,450 sq ft",
	})
	assert.Equal(t, "65f0c0ffee", l.Key())
	assert.Equal(t, int64(12000000), l.PriceValue)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, l.Images)
	require.NotNil(t, l.Location)
	assert.Equal(t, 18.94, l.Location.Lat)
	assert.Equal(t, 72.82, l.Location.Lng)
	assert.Equal(t, 3, l.Beds)
	assert.Equal(t, 2, l.Baths)
	assert.Equal(t, "1,450 sq ft", l.Area)
}

func TestNormalizeListingExplicitFieldsWin(t *testing.T) {
	l := NormalizeListing(map[string]interface{}{
		"externalId": "PROP1001",
		"id":         "abc",
		"title":      "Palm Grove",
		"imageUrl":   "p.jpg",
		"bedrooms":   float64(4),
		"areaSqFt":   float64(2000),
		"details":    "2 Beds | 1 Bath",
		"priceValue": float64(45000),
		"lat":        12.9,
	})
	assert.Equal(t, "PROP1001", l.Key())
	assert.Equal(t, 4, l.Beds)
	assert.Equal(t, 1, l.Baths)
	assert.Equal(t, "2000 sq ft", l.Area)
	assert.Equal(t, int64(45000), l.PriceValue)
	assert.Equal(t, "p.jpg", l.Image())
	assert.Nil(t, l.Location)
}

func TestListingKeyFallsBackToTitleAndAddress(t *testing.T) {
	l := NormalizeListing(map[string]interface{}{"title": "Lake House", "address": "Powai"})
	assert.Equal(t, "Lake House|Powai", l.Key())
}

func TestFilterListingsConjunction(t *testing.T) {
	listings := []Listing{
		{Title: "DLF City Villa", Status: "for-sale", PriceValue: 9_00_00_000},
		{Title: "Cozy Studio", Status: "ForRent", PriceValue: 25_000},
		{Title: "Skyline Penthouse", Status: "premium", PriceValue: 30_00_00_000},
		{Title: "City Flat", Status: "for_rent", PriceValue: 3_00_000},
		{Title: "city loft", Status: "FOR SALE", PriceValue: 80_00_000},
	}
	categories := []Category{CategoryAll, CategorySale, CategoryRent, CategoryPremium}
	ranges := []PriceRange{DefaultPriceRange(CategoryRent), DefaultPriceRange(CategorySale), {Min: 50_00_000, Max: 10_00_00_000}}
	searches := []string{"", "city", "CITY", "studio", "nothing"}

	for _, c := range categories {
		for _, r := range ranges {
			for _, s := range searches {
				f := Filter{Category: c, Price: r, Search: s}
				got := FilterListings(listings, f)
				var want []Listing
				for _, l := range listings {
					if c.Matches(l.Status) && r.Contains(l.PriceValue) && containsFold(l.Title, s) {
						want = append(want, l)
					}
				}
				assert.ElementsMatch(t, want, got, "filter %+v", f)
			}
		}
	}

	got := FilterListings(listings, Filter{Category: CategorySale, Price: DefaultPriceRange(CategorySale), Search: "city"})
	require.Len(t, got, 2)
	assert.Equal(t, "DLF City Villa", got[0].Title)
	assert.Equal(t, "city loft", got[1].Title)
}

func containsFold(title, search string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(search))
}

func TestCategoryMatchesStatusVariants(t *testing.T) {
	for _, status := range []string{"for-sale", "for_sale", "ForSale", "FOR SALE"} {
		assert.True(t, CategorySale.Matches(status), status)
		assert.False(t, CategoryRent.Matches(status), status)
	}
}

func TestBrowserResetsPriceRangeOnCategoryChange(t *testing.T) {
	b := NewBrowser(CategorySale)
	b.SetPriceRange(PriceRange{Min: 10, Max: 20})
	b.SetCategory(CategorySale)
	assert.Equal(t, PriceRange{Min: 10, Max: 20}, b.Filter().Price)

	b.SetCategory(CategoryRent)
	assert.Equal(t, PriceRange{Min: 0, Max: 200000}, b.Filter().Price)
	b.SetCategory(CategoryPremium)
	assert.Equal(t, PriceRange{Min: 0, Max: 500000000}, b.Filter().Price)
}

func TestPriceInWords(t *testing.T) {
	assert.Equal(t, "50 lakhs", PriceInWords(5000000))
	assert.Equal(t, "2.50 crores", PriceInWords(25000000))
	assert.Equal(t, "₹ 50,000", PriceInWords(50000))
	assert.Equal(t, "1 lakh", PriceInWords(100000))
	assert.Equal(t, "1.25 lakhs", PriceInWords(125000))
	assert.Equal(t, "1.00 crores", PriceInWords(10000000))
}

type fakeListings struct {
	raw []map[string]interface{}
	err error
}

func (f fakeListings) ListProperties(ctx context.Context) ([]map[string]interface{}, error) {
	return f.raw, f.err
}

func TestCatalogFetchListings(t *testing.T) {
	fallback := []map[string]interface{}{{"title": "Fallback Rental", "status": "for-rent"}}
	sale := []map[string]interface{}{{"title": "Villa", "status": "for-sale"}}

	c := NewCatalog(fakeListings{raw: sale}, zap.NewNop())
	got := c.FetchListings(context.Background(), CategoryRent, fallback)
	require.Len(t, got, 2)
	assert.Equal(t, "Fallback Rental", got[1].Title)

	got = c.FetchListings(context.Background(), CategorySale, fallback)
	assert.Len(t, got, 1)

	c = NewCatalog(fakeListings{err: errors.New("down")}, zap.NewNop())
	got = c.FetchListings(context.Background(), CategorySale, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type fakeWishlistAPI struct {
	mu    sync.Mutex
	ops   []string
	delay time.Duration
	err   error
	saved map[string]bool
}

func (f *fakeWishlistAPI) ListWishlist(ctx context.Context) ([]models.WishlistEntry, error) {
	return []models.WishlistEntry{{Key: "PROP1001", Title: "Sea View"}, {Key: "PROP1001", Title: "dup"}}, f.err
}

func (f *fakeWishlistAPI) AddToWishlist(ctx context.Context, req models.WishlistRequest) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "add:"+req.Key)
	if f.err == nil {
		f.saved[req.Key] = true
	}
	return f.err
}

func (f *fakeWishlistAPI) RemoveFromWishlist(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "remove:"+key)
	if f.err == nil {
		delete(f.saved, key)
	}
	return f.err
}

func TestWishlistDoubleToggleRestoresMembership(t *testing.T) {
	api := &fakeWishlistAPI{delay: 20 * time.Millisecond, saved: map[string]bool{}}
	w := NewWishlist(api, nil, zap.NewNop())
	l := Listing{Identifier: "PROP1001", Title: "Sea View"}

	assert.True(t, w.Toggle(context.Background(), l))
	assert.True(t, w.Contains(l))
	assert.Len(t, w.Entries(), 1)
	assert.False(t, w.Toggle(context.Background(), l))
	assert.False(t, w.Contains(l))
	w.Wait()

	assert.Equal(t, []string{"add:PROP1001", "remove:PROP1001"}, api.ops)
	assert.False(t, api.saved["PROP1001"])
	assert.Empty(t, w.Entries())
}

func TestWishlistManyTogglesKeepOrder(t *testing.T) {
	api := &fakeWishlistAPI{delay: 5 * time.Millisecond, saved: map[string]bool{}}
	w := NewWishlist(api, nil, zap.NewNop())
	l := Listing{Title: "Lake House", Address: "Powai"}

	for i := 0; i < 5; i++ {
		w.Toggle(context.Background(), l)
		assert.LessOrEqual(t, len(w.Entries()), 1)
	}
	w.Wait()

	require.Len(t, api.ops, 5)
	for i, op := range api.ops {
		if i%2 == 0 {
			assert.Equal(t, "add:Lake House|Powai", op)
		} else {
			assert.Equal(t, "remove:Lake House|Powai", op)
		}
	}
	assert.True(t, w.Contains(l))
	assert.True(t, api.saved["Lake House|Powai"])
}

func TestWishlistFailureNotifiesWithoutRevert(t *testing.T) {
	api := &fakeWishlistAPI{err: errors.New("boom"), saved: map[string]bool{}}
	n := &recordingNotifier{}
	w := NewWishlist(api, n, zap.NewNop())
	l := Listing{Identifier: "PROP1002", Title: "Palm Grove"}

	w.Toggle(context.Background(), l)
	w.Wait()

	assert.True(t, w.Contains(l))
	notices := n.all()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
}

func TestWishlistLoadDeduplicates(t *testing.T) {
	w := NewWishlist(&fakeWishlistAPI{saved: map[string]bool{}}, nil, zap.NewNop())
	w.Load(context.Background())
	entries := w.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Sea View", entries[0].Title)
}

type fakeVisitsAPI struct {
	created []models.VisitRequest
	visits  []models.Visit
	err     error
}

func (f *fakeVisitsAPI) ListVisits(ctx context.Context, uid string) ([]models.Visit, error) {
	return append([]models.Visit(nil), f.visits...), nil
}

func (f *fakeVisitsAPI) CreateVisit(ctx context.Context, req models.VisitRequest) (*models.Visit, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	v := models.Visit{UID: req.UID, PropertyName: req.PropertyName, Date: req.Date, Time: req.Time, Status: req.Status}
	f.visits = append(f.visits, v)
	return &v, nil
}

func (f *fakeVisitsAPI) DeleteVisit(ctx context.Context, id string) error { return f.err }

func (f *fakeVisitsAPI) DeleteAllVisits(ctx context.Context, uid string) error {
	f.visits = nil
	return f.err
}

func TestScheduleVisitDerivesStatus(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	api := &fakeVisitsAPI{}
	v := NewVisits(api, member(), nil, zap.NewNop())
	v.now = func() time.Time { return now }
	l := Listing{Identifier: "PROP1001", Title: "Sea View", Details: "3 Beds | 2 Baths", Beds: 3, Baths: 2}

	_, err := v.ScheduleVisit(context.Background(), l, now.AddDate(0, 0, -1).Format(models.VisitDateLayout), "10:00")
	require.NoError(t, err)
	list, err := v.ScheduleVisit(context.Background(), l, now.AddDate(0, 0, 1).Format(models.VisitDateLayout), "11:00")
	require.NoError(t, err)

	require.Len(t, api.created, 2)
	assert.Equal(t, models.VisitCompleted, api.created[0].Status)
	assert.Equal(t, models.VisitUpcoming, api.created[1].Status)
	assert.Equal(t, "u1", api.created[0].UID)
	assert.Equal(t, 3, api.created[0].Beds)
	assert.Len(t, list, 2)
}

func TestScheduleVisitRequiresCompleteSession(t *testing.T) {
	n := &recordingNotifier{}
	v := NewVisits(&fakeVisitsAPI{}, staticReader{}, n, zap.NewNop())
	_, err := v.ScheduleVisit(context.Background(), Listing{Title: "x"}, "2024-01-01", "10:00")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	v = NewVisits(&fakeVisitsAPI{}, staticReader{Session: &session.Session{UID: "u1", Email: "a@b.co"}}, n, zap.NewNop())
	_, err = v.ScheduleVisit(context.Background(), Listing{Title: "x"}, "2024-01-01", "10:00")
	assert.ErrorIs(t, err, ErrProfileIncomplete)
	assert.Len(t, n.all(), 2)
}

func TestVisitsClearAll(t *testing.T) {
	api := &fakeVisitsAPI{visits: []models.Visit{{Date: "2024-01-01"}}}
	v := NewVisits(api, member(), nil, zap.NewNop())
	require.NoError(t, v.ClearAll(context.Background()))
	assert.Empty(t, v.List(context.Background()))
}

type fakePrompter struct {
	asked  int
	answer bool
}

func (p *fakePrompter) AskLocationConsent(ctx context.Context, l Listing) bool {
	p.asked++
	return p.answer
}

type fakeLocator struct {
	pos Coordinates
	err error
}

func (f fakeLocator) CurrentPosition(ctx context.Context) (Coordinates, error) { return f.pos, f.err }

type fakeGeocoder struct{ calls int }

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	g.calls++
	return Coordinates{Lat: 19.07, Lng: 72.87}, nil
}

func TestViewDetailsAsksConsentOncePerListing(t *testing.T) {
	p := &fakePrompter{answer: true}
	g := &fakeGeocoder{}
	d := NewDetails(p, fakeLocator{pos: Coordinates{Lat: 1, Lng: 2}}, g, zap.NewNop())
	a := Listing{Identifier: "PROP1001", Address: "Bandra"}
	b := Listing{Identifier: "PROP1002", Location: &Coordinates{Lat: 3, Lng: 4}}

	view := d.ViewDetails(context.Background(), a)
	assert.True(t, view.ShowMap)
	require.NotNil(t, view.PropertyPin)
	assert.Equal(t, 19.07, view.PropertyPin.Lat)
	d.ViewDetails(context.Background(), a)
	assert.Equal(t, 1, p.asked)

	view = d.ViewDetails(context.Background(), b)
	assert.Equal(t, 2, p.asked)
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 3.0, view.PropertyPin.Lat)
}

type slowPrompter struct {
	asked   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (p *slowPrompter) AskLocationConsent(ctx context.Context, l Listing) bool {
	if p.asked.Add(1) == 1 {
		close(p.entered)
	}
	<-p.release
	return true
}

func TestConcurrentViewsShareOnePrompt(t *testing.T) {
	p := &slowPrompter{entered: make(chan struct{}), release: make(chan struct{})}
	d := NewDetails(p, fakeLocator{pos: Coordinates{Lat: 1, Lng: 2}}, nil, zap.NewNop())
	l := Listing{Identifier: "PROP1001", Location: &Coordinates{Lat: 3, Lng: 4}}

	views := make(chan DetailsView, 2)
	go func() { views <- d.ViewDetails(context.Background(), l) }()
	<-p.entered
	go func() { views <- d.ViewDetails(context.Background(), l) }()
	time.Sleep(20 * time.Millisecond)
	close(p.release)

	for i := 0; i < 2; i++ {
		assert.True(t, (<-views).ShowMap)
	}
	assert.Equal(t, int32(1), p.asked.Load())
}

func TestViewDetailsOpensWithoutLocation(t *testing.T) {
	l := Listing{Identifier: "PROP1001", Address: "Bandra"}

	denied := NewDetails(&fakePrompter{answer: false}, fakeLocator{}, nil, zap.NewNop())
	view := denied.ViewDetails(context.Background(), l)
	assert.False(t, view.ShowMap)
	assert.Equal(t, "Bandra", view.StaticAddress)

	failing := NewDetails(&fakePrompter{answer: true}, fakeLocator{err: errors.New("unsupported")}, nil, zap.NewNop())
	view = failing.ViewDetails(context.Background(), l)
	assert.False(t, view.ShowMap)
	assert.Equal(t, l, view.Listing)

	unsupported := NewDetails(nil, nil, nil, zap.NewNop())
	assert.False(t, unsupported.ViewDetails(context.Background(), l).ShowMap)
}

func TestToggleSatellite(t *testing.T) {
	d := NewDetails(nil, nil, nil, zap.NewNop())
	assert.Equal(t, StandardTiles, d.Tiles())
	assert.Equal(t, SatelliteTiles, d.ToggleSatellite())
	assert.Equal(t, StandardTiles, d.ToggleSatellite())
}
