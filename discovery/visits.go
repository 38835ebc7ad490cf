package discovery

import (
	"EstateHub/models"
	"EstateHub/session"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated  = errors.New("sign in to continue")
	ErrProfileIncomplete = errors.New("your profile needs a name and email")
)

type VisitsAPI interface {
	ListVisits(ctx context.Context, uid string) ([]models.Visit, error)
	CreateVisit(ctx context.Context, req models.VisitRequest) (*models.Visit, error)
	DeleteVisit(ctx context.Context, id string) error
	DeleteAllVisits(ctx context.Context, uid string) error
}

type Visits struct {
	api      VisitsAPI
	session  session.Reader
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewVisits(api VisitsAPI, reader session.Reader, notifier Notifier, logger *zap.Logger) *Visits {
	return &Visits{
		api:      api,
		session:  reader,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "visits")),
		now:      time.Now,
	}
}

func (v *Visits) user() (*session.Session, error) {
	s := v.session.State().Session
	if s == nil {
		return nil, ErrNotAuthenticated
	}
	if s.Email == "" || s.Name == "" {
		return nil, ErrProfileIncomplete
	}
	return s, nil
}

// ScheduleVisit creates the visit and then returns the server's full list.
// Nothing is merged locally.
func (v *Visits) ScheduleVisit(ctx context.Context, l Listing, date, clock string) ([]models.Visit, error) {
	s, err := v.user()
	if err != nil {
		notify(v.notifier, LevelError, err.Error())
		return nil, err
	}

	req := models.VisitRequest{
		UID:           s.UID,
		UserName:      s.Name,
		UserEmail:     s.Email,
		PropertyID:    l.Key(),
		PropertyName:  l.Title,
		PropertyImage: l.Image(),
		Address:       l.Address,
		Beds:          l.Beds,
		Baths:         l.Baths,
		Area:          l.Area,
		Date:          date,
		Time:          clock,
		Status:        models.DeriveVisitStatus(date, v.now()),
	}
	if l.Location != nil {
		lat, lng := l.Location.Lat, l.Location.Lng
		req.Lat, req.Lng = &lat, &lng
	}

	if _, err := v.api.CreateVisit(ctx, req); err != nil {
		v.logger.Warn("scheduling visit failed", zap.String("property", req.PropertyID), zap.Error(err))
		notify(v.notifier, LevelError, "Could not schedule your visit. Please try again.")
		return nil, err
	}
	notify(v.notifier, LevelSuccess, "Visit scheduled for "+date+" at "+clock)
	return v.List(ctx), nil
}

// List is best effort; failures give an empty list.
func (v *Visits) List(ctx context.Context) []models.Visit {
	s := v.session.State().Session
	if s == nil {
		return []models.Visit{}
	}
	visits, err := v.api.ListVisits(ctx, s.UID)
	if err != nil {
		v.logger.Warn("listing visits failed", zap.Error(err))
		return []models.Visit{}
	}
	now := v.now()
	for i := range visits {
		visits[i].Status = models.DeriveVisitStatus(visits[i].Date, now)
	}
	return visits
}

func (v *Visits) Cancel(ctx context.Context, id string) ([]models.Visit, error) {
	if v.session.State().Session == nil {
		return nil, ErrNotAuthenticated
	}
	if err := v.api.DeleteVisit(ctx, id); err != nil {
		v.logger.Warn("cancelling visit failed", zap.String("visit", id), zap.Error(err))
		notify(v.notifier, LevelError, "Could not cancel the visit.")
		return nil, err
	}
	return v.List(ctx), nil
}

func (v *Visits) ClearAll(ctx context.Context) error {
	s := v.session.State().Session
	if s == nil {
		return ErrNotAuthenticated
	}
	if err := v.api.DeleteAllVisits(ctx, s.UID); err != nil {
		v.logger.Warn("clearing visits failed", zap.Error(err))
		notify(v.notifier, LevelError, "Could not clear your visits.")
		return err
	}
	notify(v.notifier, LevelSuccess, "All visits cleared")
	return nil
}
