package discovery

import (
	"EstateHub/models"
	"EstateHub/session"
	"EstateHub/tasks"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchListing(t *testing.T) {
	listings := []Listing{
		{Title: "DLF City"},
		{Title: "Sea View Residency"},
		{Title: "Palm-Grove Villas"},
	}

	l, mode := MatchListing("dlf city", listings)
	assert.NotEqual(t, NoMatch, mode)
	assert.Equal(t, "DLF City", l.Title)

	l, mode = MatchListing("d l f city", listings)
	assert.Equal(t, CompactMatch, mode)
	assert.Equal(t, "DLF City", l.Title)

	l, mode = MatchListing("Show me sea view residency please!", listings)
	assert.Equal(t, SubstringMatch, mode)
	assert.Equal(t, "Sea View Residency", l.Title)

	l, mode = MatchListing("palm grove", listings)
	assert.Equal(t, CompactMatch, mode)
	assert.Equal(t, "Palm-Grove Villas", l.Title)

	_, mode = MatchListing("  ", listings)
	assert.Equal(t, NoMatch, mode)
	_, mode = MatchListing("lodha park", listings)
	assert.Equal(t, NoMatch, mode)
}

func TestNormalizeTranscript(t *testing.T) {
	assert.Equal(t, "dlf city phase2", NormalizeTranscript("  DLF, City   Phase-2. "))
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{Name: "default", Lang: "de-DE", Default: true},
		{Name: "us", Lang: "en-US"},
		{Name: "in-male", Lang: "en-IN"},
		{Name: "in-female", Lang: "en_IN", Female: true},
	}
	v, ok := SelectVoice(voices)
	require.True(t, ok)
	assert.Equal(t, "in-female", v.Name)

	v, _ = SelectVoice(voices[:3])
	assert.Equal(t, "in-male", v.Name)
	v, _ = SelectVoice(voices[:2])
	assert.Equal(t, "us", v.Name)
	v, _ = SelectVoice(voices[:1])
	assert.Equal(t, "default", v.Name)
	_, ok = SelectVoice(nil)
	assert.False(t, ok)
}

type fakeNarrator struct {
	mu     sync.Mutex
	spoken []string
	voice  Voice
}

func (n *fakeNarrator) Voices() []Voice {
	return []Voice{{Name: "en", Lang: "en-GB"}, {Name: "hi", Lang: "en-IN", Female: true}}
}

func (n *fakeNarrator) Speak(ctx context.Context, text string, voice Voice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
	n.voice = voice
	return nil
}

func TestVoiceSearchNarratesAndOpensDetails(t *testing.T) {
	narrator := &fakeNarrator{}
	details := NewDetails(nil, nil, nil, zap.NewNop())
	vs := NewVoiceSearch(narrator, details, nil, zap.NewNop())
	listings := []Listing{{Title: "DLF City", Beds: 3, Baths: 2, Area: "1500 sq ft", Address: "Gurugram", PriceValue: 25000000}}

	res := vs.Search(context.Background(), "DLF city", listings)
	require.NotNil(t, res.Listing)
	require.NotNil(t, res.View)
	assert.Equal(t, "DLF City. 3 bedrooms, 2 bathrooms, 1500 sq ft. Located at Gurugram. Price 2.50 crores.", res.Narration)
	assert.Equal(t, []string{res.Narration}, narrator.spoken)
	assert.Equal(t, "hi", narrator.voice.Name)
}

func TestVoiceSearchNotFound(t *testing.T) {
	n := &recordingNotifier{}
	vs := NewVoiceSearch(nil, nil, n, zap.NewNop())
	res := vs.Search(context.Background(), "Lodha Park", []Listing{{Title: "DLF City"}})
	assert.Equal(t, NoMatch, res.Mode)
	assert.Nil(t, res.Listing)
	assert.Contains(t, res.Narration, "lodha park")
	assert.Len(t, n.all(), 1)
}

type fakeReviewsAPI struct {
	votes    int
	uploads  []string
	created  []models.ReviewRequest
	verified []string
}

func (f *fakeReviewsAPI) ListReviews(ctx context.Context) ([]models.Review, error) {
	return nil, errors.New("down")
}

func (f *fakeReviewsAPI) CreateReview(ctx context.Context, req models.ReviewRequest) (*models.Review, error) {
	f.created = append(f.created, req)
	return &models.Review{Body: req.Body, Rating: req.Rating, Images: req.Images}, nil
}

func (f *fakeReviewsAPI) MarkHelpful(ctx context.Context, id string, helpful bool) (*models.Review, error) {
	f.votes++
	return &models.Review{HelpfulYes: f.votes}, nil
}

func (f *fakeReviewsAPI) VerifyReview(ctx context.Context, id string, verified bool) (*models.Review, error) {
	f.verified = append(f.verified, id)
	return &models.Review{Verified: verified}, nil
}

func (f *fakeReviewsAPI) DeleteReview(ctx context.Context, id string) error { return nil }

func (f *fakeReviewsAPI) DeleteAllReviews(ctx context.Context) error { return nil }

func (f *fakeReviewsAPI) UploadReviewImage(ctx context.Context, filename string, data []byte) (string, error) {
	f.uploads = append(f.uploads, filename)
	return "https://cdn.example.com/reviews/" + filename, nil
}

func TestReviewVoteGuard(t *testing.T) {
	api := &fakeReviewsAPI{}
	r := NewReviews(api, member(), session.NewMemoryStorage(), nil, zap.NewNop())

	_, err := r.Vote(context.Background(), "r1", true)
	require.NoError(t, err)
	_, err = r.Vote(context.Background(), "r1", false)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = r.Vote(context.Background(), "r2", false)
	require.NoError(t, err)
	assert.Equal(t, 2, api.votes)
}

func TestReviewSubmit(t *testing.T) {
	api := &fakeReviewsAPI{}
	r := NewReviews(api, member(), session.NewMemoryStorage(), nil, zap.NewNop())

	_, err := r.Submit(context.Background(), ReviewDraft{Body: "Great", Rating: 6})
	assert.Error(t, err)
	_, err = r.Submit(context.Background(), ReviewDraft{Rating: 4})
	assert.Error(t, err)
	assert.Empty(t, api.created)

	review, err := r.Submit(context.Background(), ReviewDraft{
		Body:   "Lovely balcony",
		Rating: 5,
		Images: []ImageUpload{{Filename: "balcony.jpg", Data: []byte{0xff, 0xd8}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/reviews/balcony.jpg"}, review.Images)

	anon := NewReviews(api, staticReader{}, session.NewMemoryStorage(), nil, zap.NewNop())
	_, err = anon.Submit(context.Background(), ReviewDraft{Body: "x", Rating: 3})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestReviewVerifyNeedsStaff(t *testing.T) {
	api := &fakeReviewsAPI{}
	r := NewReviews(api, member(), session.NewMemoryStorage(), nil, zap.NewNop())
	_, err := r.Verify(context.Background(), "r1", true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, r.DeleteAll(context.Background()), ErrForbidden)

	admin := staticReader{Session: &session.Session{UID: "u2", Role: models.RoleAdmin}}
	r = NewReviews(api, admin, session.NewMemoryStorage(), nil, zap.NewNop())
	review, err := r.Verify(context.Background(), "r1", true)
	require.NoError(t, err)
	assert.True(t, review.Verified)
	assert.Equal(t, []string{"r1"}, api.verified)
}

func TestReviewListFailureIsEmpty(t *testing.T) {
	r := NewReviews(&fakeReviewsAPI{}, member(), session.NewMemoryStorage(), nil, zap.NewNop())
	reviews := r.List(context.Background())
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

type fakePaymentsAPI struct {
	mu        sync.Mutex
	verified  []models.VerifyPaymentRequest
	invoices  []string
	verifyErr error
}

func (f *fakePaymentsAPI) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	return &models.CreateOrderResponse{OrderID: "order_1", KeyID: "key", Amount: req.Amount, Currency: req.Currency}, nil
}

func (f *fakePaymentsAPI) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest) error {
	f.verified = append(f.verified, req)
	return f.verifyErr
}

func (f *fakePaymentsAPI) SendInvoice(ctx context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, paymentID)
	return nil
}

type fakeGateway struct{ err error }

func (g fakeGateway) Collect(ctx context.Context, order models.CreateOrderResponse) (models.VerifyPaymentRequest, error) {
	if g.err != nil {
		return models.VerifyPaymentRequest{}, g.err
	}
	return models.VerifyPaymentRequest{PaymentID: "pay_1", Signature: "sig"}, nil
}

func TestCheckoutPay(t *testing.T) {
	api := &fakePaymentsAPI{}
	runner := tasks.NewRunner(zap.NewNop(), time.Second)
	n := &recordingNotifier{}
	c := NewCheckout(api, fakeGateway{}, runner, member(), n, zap.NewNop())

	receipt, err := c.Pay(context.Background(), Listing{Identifier: "PROP1001"}, 500000)
	require.NoError(t, err)
	assert.Equal(t, "pay_1", receipt.PaymentID)
	require.Len(t, api.verified, 1)
	assert.Equal(t, "order_1", api.verified[0].OrderID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, runner.Wait(ctx))
	assert.Equal(t, []string{"pay_1"}, api.invoices)

	notices := n.all()
	require.Len(t, notices, 1)
	assert.Equal(t, "Payment of ₹ 5,000 successful", notices[0].Message)
}

func TestCheckoutCancelledAndUnverified(t *testing.T) {
	runner := tasks.NewRunner(zap.NewNop(), time.Second)

	api := &fakePaymentsAPI{}
	c := NewCheckout(api, fakeGateway{err: errors.New("dismissed")}, runner, member(), nil, zap.NewNop())
	_, err := c.Pay(context.Background(), Listing{Identifier: "PROP1001"}, 500000)
	assert.ErrorIs(t, err, ErrPaymentCancelled)
	assert.Empty(t, api.verified)

	api = &fakePaymentsAPI{verifyErr: errors.New("bad signature")}
	c = NewCheckout(api, fakeGateway{}, runner, member(), nil, zap.NewNop())
	_, err = c.Pay(context.Background(), Listing{Identifier: "PROP1001"}, 500000)
	assert.Error(t, err)
	require.NoError(t, runner.Wait(context.Background()))
	assert.Empty(t, api.invoices)

	c = NewCheckout(api, fakeGateway{}, runner, staticReader{}, nil, zap.NewNop())
	_, err = c.Pay(context.Background(), Listing{}, 100)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
