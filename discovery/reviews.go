package discovery

import (
	"EstateHub/models"
	"EstateHub/session"
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrAlreadyVoted = errors.New("you already rated this review")
	ErrForbidden    = errors.New("not allowed")
)

type ReviewsAPI interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	CreateReview(ctx context.Context, req models.ReviewRequest) (*models.Review, error)
	MarkHelpful(ctx context.Context, id string, helpful bool) (*models.Review, error)
	VerifyReview(ctx context.Context, id string, verified bool) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
	DeleteAllReviews(ctx context.Context) error
	UploadReviewImage(ctx context.Context, filename string, data []byte) (string, error)
}

type ImageUpload struct {
	Filename string
	Data     []byte
}

type ReviewDraft struct {
	PropertyID string
	Body       string `validate:"required"`
	Rating     int    `validate:"min=1,max=5"`
	Images     []ImageUpload
}

var validate = validator.New()

// Reviews keeps helpful votes in device storage, so a vote is remembered
// per device rather than per account.
type Reviews struct {
	api      ReviewsAPI
	session  session.Reader
	votes    session.Storage
	notifier Notifier
	logger   *zap.Logger
}

func NewReviews(api ReviewsAPI, reader session.Reader, votes session.Storage, notifier Notifier, logger *zap.Logger) *Reviews {
	return &Reviews{
		api:      api,
		session:  reader,
		votes:    votes,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "reviews")),
	}
}

func voteKey(id string) string {
	return "review-vote:" + id
}

func (r *Reviews) List(ctx context.Context) []models.Review {
	reviews, err := r.api.ListReviews(ctx)
	if err != nil {
		r.logger.Warn("listing reviews failed", zap.Error(err))
		return []models.Review{}
	}
	return reviews
}

// Submit uploads attached images first, then creates the review.
func (r *Reviews) Submit(ctx context.Context, draft ReviewDraft) (*models.Review, error) {
	if r.session.State().Session == nil {
		return nil, ErrNotAuthenticated
	}
	if err := validate.Struct(draft); err != nil {
		notify(r.notifier, LevelError, "Please add a rating between 1 and 5 and a comment.")
		return nil, err
	}

	req := models.ReviewRequest{PropertyID: draft.PropertyID, Body: draft.Body, Rating: draft.Rating}
	for _, img := range draft.Images {
		url, err := r.api.UploadReviewImage(ctx, img.Filename, img.Data)
		if err != nil {
			r.logger.Warn("review image upload failed", zap.String("file", img.Filename), zap.Error(err))
			notify(r.notifier, LevelError, "Could not upload "+img.Filename)
			return nil, fmt.Errorf("upload %s: %w", img.Filename, err)
		}
		req.Images = append(req.Images, url)
	}

	review, err := r.api.CreateReview(ctx, req)
	if err != nil {
		r.logger.Warn("submitting review failed", zap.Error(err))
		notify(r.notifier, LevelError, "Could not submit your review.")
		return nil, err
	}
	notify(r.notifier, LevelSuccess, "Thanks for your review!")
	return review, nil
}

// Vote records a helpful or not-helpful vote once per review per device.
func (r *Reviews) Vote(ctx context.Context, id string, helpful bool) (*models.Review, error) {
	if _, voted, err := r.votes.Get(ctx, voteKey(id)); err != nil {
		r.logger.Warn("reading vote flag failed", zap.Error(err))
	} else if voted {
		notify(r.notifier, LevelInfo, ErrAlreadyVoted.Error())
		return nil, ErrAlreadyVoted
	}

	review, err := r.api.MarkHelpful(ctx, id, helpful)
	if err != nil {
		r.logger.Warn("voting failed", zap.String("review", id), zap.Error(err))
		notify(r.notifier, LevelError, "Could not record your vote.")
		return nil, err
	}
	vote := "no"
	if helpful {
		vote = "yes"
	}
	if err := r.votes.Set(ctx, voteKey(id), vote); err != nil {
		r.logger.Warn("storing vote flag failed", zap.Error(err))
	}
	return review, nil
}

func (r *Reviews) staff() bool {
	return models.IsStaffRole(r.session.State().Role())
}

// Verify is offered to admins and owners only.
func (r *Reviews) Verify(ctx context.Context, id string, verified bool) (*models.Review, error) {
	if !r.staff() {
		return nil, ErrForbidden
	}
	review, err := r.api.VerifyReview(ctx, id, verified)
	if err != nil {
		notify(r.notifier, LevelError, "Could not update the review.")
		return nil, err
	}
	return review, nil
}

func (r *Reviews) Delete(ctx context.Context, id string) error {
	if r.session.State().Session == nil {
		return ErrNotAuthenticated
	}
	if err := r.api.DeleteReview(ctx, id); err != nil {
		notify(r.notifier, LevelError, "Could not delete the review.")
		return err
	}
	return nil
}

func (r *Reviews) DeleteAll(ctx context.Context) error {
	if !r.staff() {
		return ErrForbidden
	}
	if err := r.api.DeleteAllReviews(ctx); err != nil {
		notify(r.notifier, LevelError, "Could not delete reviews.")
		return err
	}
	notify(r.notifier, LevelSuccess, "All reviews deleted")
	return nil
}
