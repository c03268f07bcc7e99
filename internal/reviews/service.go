package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/saga"
)

const (
	sagaCreate = "review-create"
	sagaDelete = "review-delete"

	maxBodyLength = 2000
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ExistsForUser(ctx context.Context, ratingStatisticID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository interface {
	FindByIdentityRef(ctx context.Context, ref string) (*models.User, error)
}

// ratingService is the part of the establishment lifecycle reviews depend on.
type ratingService interface {
	GetRatingStatisticID(ctx context.Context, ref string) (uuid.UUID, error)
	AdjustRating(ctx context.Context, ratingStatisticID uuid.UUID, star int, increment bool) error
}

// Service manages reviews and keeps the rating buckets paired with them.
type Service interface {
	Create(ctx context.Context, userRef, establishmentRef string, rating int, body string) (*ReviewDTO, error)
	Delete(ctx context.Context, userRef string, reviewID uuid.UUID) error
}

type ServiceParams struct {
	Repo        reviewRepository
	Users       userRepository
	Ratings     ratingService
	Logger      *logger.Logger
	SagaMetrics *metrics.SagaMetrics
}

type service struct {
	repo        reviewRepository
	users       userRepository
	ratings     ratingService
	logg        *logger.Logger
	sagaMetrics *metrics.SagaMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        params.Repo,
		users:       params.Users,
		ratings:     params.Ratings,
		logg:        params.Logger,
		sagaMetrics: params.SagaMetrics,
	}, nil
}

// Create stores the user's review of an accepted establishment and counts it
// in the matching star bucket. A failed increment removes the review again.
func (s *service) Create(ctx context.Context, userRef, establishmentRef string, rating int, body string) (*ReviewDTO, error) {
	if _, ok := models.RatingBucketColumn(rating); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": rating})
	}
	body = strings.TrimSpace(body)
	if len(body) > maxBodyLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review body too long").
			WithDetails(map[string]any{"max_length": maxBodyLength})
	}

	user, err := s.loadUser(ctx, userRef)
	if err != nil {
		return nil, err
	}
	statisticID, err := s.ratings.GetRatingStatisticID(ctx, establishmentRef)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsForUser(ctx, statisticID, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "establishment already reviewed")
	}

	review := &models.Review{
		RatingStatisticID: statisticID,
		UserID:            user.ID,
		Rating:            rating,
		Body:              body,
	}
	run := saga.New(sagaCreate, s.logg, s.sagaMetrics).
		Step("insert-review", func(ctx context.Context) error {
			if err := s.repo.Create(ctx, review); err != nil {
				if isDuplicateReview(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "establishment already reviewed")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
			}
			return nil
		}, func(ctx context.Context) error {
			return s.repo.Delete(ctx, review.ID)
		}).
		Step("increment-rating", func(ctx context.Context) error {
			return s.ratings.AdjustRating(ctx, statisticID, rating, true)
		}, saga.NoCompensation)

	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"identity_ref":      userRef,
		"establishment_ref": establishmentRef,
		"rating":            rating,
	}), "review created")
	dto := FromModel(review)
	return &dto, nil
}

// Delete removes the author's review and takes it out of its star bucket.
func (s *service) Delete(ctx context.Context, userRef string, reviewID uuid.UUID) error {
	user, err := s.loadUser(ctx, userRef)
	if err != nil {
		return err
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.UserID != user.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may delete a review")
	}

	run := saga.New(sagaDelete, s.logg, s.sagaMetrics).
		Step("decrement-rating", func(ctx context.Context) error {
			return s.ratings.AdjustRating(ctx, review.RatingStatisticID, review.Rating, false)
		}, func(ctx context.Context) error {
			return s.ratings.AdjustRating(ctx, review.RatingStatisticID, review.Rating, true)
		}).
		Step("delete-review", func(ctx context.Context) error {
			if err := s.repo.Delete(ctx, review.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
			}
			return nil
		}, saga.NoCompensation)

	if err := run.Run(ctx); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(s.logg.WithIdentityRef(ctx, userRef), "review_id", reviewID.String()), "review deleted")
	return nil
}

func (s *service) loadUser(ctx context.Context, ref string) (*models.User, error) {
	user, err := s.users.FindByIdentityRef(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// isDuplicateReview matches the Postgres index name or the SQLite column message.
func isDuplicateReview(err error) bool {
	return db.IsUniqueViolation(err, "idx_reviews_statistic_user") || db.IsUniqueViolation(err, "reviews.rating_statistic_id")
}
