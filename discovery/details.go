package discovery

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type TileProvider struct {
	Name        string
	URLTemplate string
	Attribution string
}

var (
	StandardTiles = TileProvider{
		Name:        "standard",
		URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	}
	SatelliteTiles = TileProvider{
		Name:        "satellite",
		URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles © Esri",
	}
)

// ConsentPrompter asks the user whether their location may be used.
type ConsentPrompter interface {
	AskLocationConsent(ctx context.Context, l Listing) bool
}

// Locator returns the device position. Any error counts as a refusal.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

type DetailsView struct {
	Listing       Listing
	ShowMap       bool
	UserPosition  *Coordinates
	PropertyPin   *Coordinates
	Tiles         TileProvider
	StaticAddress string
}

// Details opens the details view. Location consent is asked at most once
// per listing for the lifetime of a Details.
type Details struct {
	prompter ConsentPrompter
	locator  Locator
	geocoder Geocoder
	logger   *zap.Logger

	mu        sync.Mutex
	consent   map[string]bool
	asking    map[string]chan struct{}
	pins      map[string]Coordinates
	satellite bool
}

// NewDetails accepts nil prompter, locator or geocoder for platforms that
// lack them.
func NewDetails(prompter ConsentPrompter, locator Locator, geocoder Geocoder, logger *zap.Logger) *Details {
	return &Details{
		prompter: prompter,
		locator:  locator,
		geocoder: geocoder,
		logger:   logger.With(zap.String("component", "details")),
		consent:  make(map[string]bool),
		asking:   make(map[string]chan struct{}),
		pins:     make(map[string]Coordinates),
	}
}

// consentFor prompts at most once per listing. Concurrent callers for the
// same listing wait for the prompt already on screen.
func (d *Details) consentFor(ctx context.Context, l Listing) bool {
	key := l.Key()
	var done chan struct{}
	for done == nil {
		d.mu.Lock()
		if granted, asked := d.consent[key]; asked {
			d.mu.Unlock()
			return granted
		}
		pending, ok := d.asking[key]
		if !ok {
			done = make(chan struct{})
			d.asking[key] = done
		}
		d.mu.Unlock()
		if ok {
			select {
			case <-pending:
			case <-ctx.Done():
				return false
			}
		}
	}

	granted := d.prompter != nil && d.prompter.AskLocationConsent(ctx, l)
	d.mu.Lock()
	d.consent[key] = granted
	delete(d.asking, key)
	d.mu.Unlock()
	close(done)
	return granted
}

// ViewDetails always returns a view. Without consent or a position fix it
// shows the static address instead of the map.
func (d *Details) ViewDetails(ctx context.Context, l Listing) DetailsView {
	view := DetailsView{Listing: l, Tiles: d.Tiles(), StaticAddress: l.Address}
	if !d.consentFor(ctx, l) || d.locator == nil {
		return view
	}

	pos, err := d.locator.CurrentPosition(ctx)
	if err != nil {
		d.logger.Info("location unavailable", zap.String("listing", l.Key()), zap.Error(err))
		return view
	}
	view.UserPosition = &pos

	view.PropertyPin = d.pin(ctx, l)
	view.ShowMap = true
	return view
}

// pin places the listing on the map, geocoding its address once when the
// listing carries no coordinates.
func (d *Details) pin(ctx context.Context, l Listing) *Coordinates {
	if l.Location != nil {
		return l.Location
	}
	if d.geocoder == nil || l.Address == "" {
		return nil
	}
	d.mu.Lock()
	c, ok := d.pins[l.Key()]
	d.mu.Unlock()
	if ok {
		return &c
	}
	c, err := d.geocoder.Geocode(ctx, l.Address)
	if err != nil {
		d.logger.Info("geocoding listing failed", zap.String("address", l.Address), zap.Error(err))
		return nil
	}
	d.mu.Lock()
	d.pins[l.Key()] = c
	d.mu.Unlock()
	return &c
}

// ToggleSatellite switches between the two tile providers.
func (d *Details) ToggleSatellite() TileProvider {
	d.mu.Lock()
	d.satellite = !d.satellite
	d.mu.Unlock()
	return d.Tiles()
}

func (d *Details) Tiles() TileProvider {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.satellite {
		return SatelliteTiles
	}
	return StandardTiles
}
