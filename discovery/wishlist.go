package discovery

import (
	"EstateHub/models"
	"context"
	"sync"

	"go.uber.org/zap"
)

type WishlistAPI interface {
	ListWishlist(ctx context.Context) ([]models.WishlistEntry, error)
	AddToWishlist(ctx context.Context, req models.WishlistRequest) error
	RemoveFromWishlist(ctx context.Context, key string) error
}

// Wishlist mirrors the user's saved listings locally. Toggles apply at
// once; the matching API calls for one key run one at a time in the order
// they were made.
type Wishlist struct {
	api      WishlistAPI
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]models.WishlistRequest
	order   []string
	tails   map[string]chan struct{}
	wg      sync.WaitGroup
}

func NewWishlist(api WishlistAPI, notifier Notifier, logger *zap.Logger) *Wishlist {
	return &Wishlist{
		api:      api,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "wishlist")),
		entries:  make(map[string]models.WishlistRequest),
		tails:    make(map[string]chan struct{}),
	}
}

func entryFor(l Listing) models.WishlistRequest {
	id := l.Identifier
	if id == "" {
		id = l.ID
	}
	return models.WishlistRequest{
		Key:        l.Key(),
		PropertyID: id,
		Title:      l.Title,
		Address:    l.Address,
		Price:      l.Price,
		Image:      l.Image(),
	}
}

// Toggle flips membership of l and reports whether it is now saved. One
// API request is queued per call. A failed request is reported through the
// notifier; the local state is not rolled back.
func (w *Wishlist) Toggle(ctx context.Context, l Listing) bool {
	entry := entryFor(l)
	key := entry.Key

	w.mu.Lock()
	_, present := w.entries[key]
	if present {
		w.removeLocked(key)
	} else {
		w.entries[key] = entry
		w.order = append(w.order, key)
	}
	prev := w.tails[key]
	done := make(chan struct{})
	w.tails[key] = done
	w.mu.Unlock()

	reqCtx := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.release(key, done)
		if prev != nil {
			<-prev
		}

		var err error
		if present {
			err = w.api.RemoveFromWishlist(reqCtx, key)
		} else {
			err = w.api.AddToWishlist(reqCtx, entry)
		}
		if err != nil {
			w.logger.Warn("wishlist update failed", zap.String("key", key), zap.Bool("remove", present), zap.Error(err))
			if present {
				notify(w.notifier, LevelError, "Could not remove "+entry.Title+" from your wishlist")
			} else {
				notify(w.notifier, LevelError, "Could not add "+entry.Title+" to your wishlist")
			}
		}
	}()
	return !present
}

func (w *Wishlist) release(key string, done chan struct{}) {
	close(done)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tails[key] == done {
		delete(w.tails, key)
	}
}

func (w *Wishlist) removeLocked(key string) {
	delete(w.entries, key)
	for i, k := range w.order {
		if k == key {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

func (w *Wishlist) Contains(l Listing) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[l.Key()]
	return ok
}

// Entries returns saved entries in the order they were added.
func (w *Wishlist) Entries() []models.WishlistRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.WishlistRequest, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.entries[k])
	}
	return out
}

// Load replaces local state with the server copy. On failure the list is
// left empty.
func (w *Wishlist) Load(ctx context.Context) {
	remote, err := w.api.ListWishlist(ctx)
	if err != nil {
		w.logger.Warn("loading wishlist failed", zap.Error(err))
		remote = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = make(map[string]models.WishlistRequest, len(remote))
	w.order = w.order[:0]
	for _, e := range remote {
		if _, dup := w.entries[e.Key]; dup {
			continue
		}
		w.entries[e.Key] = models.WishlistRequest{
			Key:        e.Key,
			PropertyID: e.PropertyID,
			Title:      e.Title,
			Address:    e.Address,
			Price:      e.Price,
			Image:      e.Image,
		}
		w.order = append(w.order, e.Key)
	}
}

// Wait blocks until every queued request finished.
func (w *Wishlist) Wait() {
	w.wg.Wait()
}
