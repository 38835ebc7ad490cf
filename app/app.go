// Package app wires the client core: session, route guard and the
// discovery flows, all talking to one API client.
package app

import (
	"EstateHub/client"
	"EstateHub/config"
	"EstateHub/discovery"
	"EstateHub/guard"
	"EstateHub/identity"
	"EstateHub/session"
	"EstateHub/tasks"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Platform holds the device capabilities. Any of them may be nil.
type Platform struct {
	Prompter discovery.ConsentPrompter
	Locator  discovery.Locator
	Narrator discovery.Narrator
	Gateway  discovery.PaymentGateway
	Notifier discovery.Notifier
}

type App struct {
	settings config.ClientSettings
	logger   *zap.Logger

	API      *client.Client
	Store    *session.Store
	Session  *session.Manager
	Guard    *guard.Guard
	Runner   *tasks.Runner
	Catalog  *discovery.Catalog
	Browser  *discovery.Browser
	Wishlist *discovery.Wishlist
	Details  *discovery.Details
	Visits   *discovery.Visits
	Voice    *discovery.VoiceSearch
	Reviews  *discovery.Reviews
	Checkout *discovery.Checkout
}

func New(settings config.ClientSettings, storage session.Storage, p Platform, logger *zap.Logger) *App {
	store := session.NewStore()
	api := client.New(settings.APIURL,
		client.WithHTTPClient(&http.Client{Timeout: settings.RequestTimeout}),
		client.WithTokenSource(store.Token),
		client.WithLogger(logger))
	runner := tasks.NewRunner(logger, 30*time.Second)
	details := discovery.NewDetails(p.Prompter, p.Locator, api, logger)

	a := &App{
		settings: settings,
		logger:   logger,
		API:      api,
		Store:    store,
		Session:  session.NewManager(store, identity.New(api), session.APIRoleStore{API: api}, storage, logger),
		Guard:    guard.New(guard.DefaultRules(), false),
		Runner:   runner,
		Catalog:  discovery.NewCatalog(api, logger),
		Browser:  discovery.NewBrowser(discovery.CategorySale),
		Wishlist: discovery.NewWishlist(api, p.Notifier, logger),
		Details:  details,
		Visits:   discovery.NewVisits(api, store, p.Notifier, logger),
		Voice:    discovery.NewVoiceSearch(p.Narrator, details, p.Notifier, logger),
		Reviews:  discovery.NewReviews(api, store, storage, p.Notifier, logger),
	}
	if p.Gateway != nil {
		a.Checkout = discovery.NewCheckout(api, p.Gateway, runner, store, p.Notifier, logger)
	}
	return a
}

// Start resolves the stored session and watches for inactivity until ctx
// is done. onExpire receives the login route when the session times out.
func (a *App) Start(ctx context.Context, onExpire func(redirect string)) error {
	s, err := a.Session.ResolveSession(ctx)
	if err != nil {
		a.logger.Warn("restoring session failed", zap.Error(err))
	}
	if s != nil {
		a.Wishlist.Load(ctx)
	}
	go a.Session.WatchInactivity(ctx, a.settings.InactivityInterval, onExpire)
	return err
}

// Navigate refreshes the role and then checks the route.
func (a *App) Navigate(ctx context.Context, path string) guard.Decision {
	a.Session.RefreshRoleOnNavigation(ctx, path)
	return a.Guard.Check(path, a.Store.State())
}

// Close flushes pending wishlist requests and background tasks.
func (a *App) Close(ctx context.Context) error {
	a.Wishlist.Wait()
	return a.Runner.Wait(ctx)
}
