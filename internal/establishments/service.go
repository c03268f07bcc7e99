package establishments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/identity"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/maps"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/pagination"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/saga"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/security"
)

const (
	sagaRegistration = "establishment-registration"
	sagaDeletion     = "establishment-deletion"

	defaultTempPasswordLength = 16
)

var profilePreloads = []string{
	PreloadCategories,
	PreloadTags,
	PreloadBusinessHours,
	PreloadMenus,
	PreloadSocialLinks,
	PreloadRatingStatistic,
	PreloadPosts,
	PreloadEvents,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryRepository interface {
	FindByNames(ctx context.Context, names []string) ([]models.Category, error)
}

type tagRepository interface {
	FindByNames(ctx context.Context, names []string) ([]models.Tag, error)
}

type identityClient interface {
	CreateAccount(ctx context.Context, owner identity.OwnerInfo) (string, error)
	DeleteAccount(ctx context.Context, ref string) error
	AssignRole(ctx context.Context, ref string, role enums.Role) error
	ChangePassword(ctx context.Context, ref, password string) error
	GetOwnerNameAndEmail(ctx context.Context, ref string) (string, string, error)
}

type blobStore interface {
	UploadPicture(ctx context.Context, data []byte, role enums.Role, ownerRef, pictureKey string) (string, error)
	Delete(ctx context.Context, role enums.Role, ownerRef, pictureKey string) error
}

type accountMailer interface {
	SendAccountAcceptedEmail(ctx context.Context, name, establishmentName, email, tempPassword string) error
}

// Service drives the establishment lifecycle: registration, vetting,
// profile maintenance, discovery and deletion.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*ProfileDTO, error)
	UpdateRegistrationStatus(ctx context.Context, ref string, status enums.RequestStatus) error
	Delete(ctx context.Context, ref string) error
	AdjustRating(ctx context.Context, ratingStatisticID uuid.UUID, star int, increment bool) error
	Search(ctx context.Context, filters SearchFilters, page int) ([]EstablishmentMarker, error)

	GetProfile(ctx context.Context, ref string) (*ProfileDTO, error)
	GetOwnProfile(ctx context.Context, ref string) (*ProfileDTO, error)
	GetPendingList(ctx context.Context) ([]PendingEstablishmentDTO, error)
	GetRatingStatisticID(ctx context.Context, ref string) (uuid.UUID, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)

	UpdateGenericInfo(ctx context.Context, ref string, input GenericInfoInput) (*ProfileDTO, error)
	UpdateLocationInfo(ctx context.Context, ref string, input LocationInput) (*ProfileDTO, error)
	UpdatePicture(ctx context.Context, ref string, picture PictureContext, data []byte) (string, error)

	CreateMenu(ctx context.Context, ref string, input MenuInput) (*MenuDTO, error)
	UpdateMenu(ctx context.Context, ref string, menuID uuid.UUID, input MenuInput) (*MenuDTO, error)
	DeleteMenu(ctx context.Context, ref string, menuID uuid.UUID) error
	DeleteMenuItem(ctx context.Context, ref string, menuID, itemID uuid.UUID) error
}

// ServiceParams packages the collaborators of the lifecycle service.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Categories  categoryRepository
	Tags        tagRepository
	Geocoder    maps.Geocoder
	Identity    identityClient
	Blobs       blobStore
	Mailer      accountMailer
	Logger      *logger.Logger
	SagaMetrics *metrics.SagaMetrics
	Search      config.SearchConfig
	Password    config.PasswordConfig
}

type service struct {
	repo        Repository
	tx          txRunner
	categories  categoryRepository
	tags        tagRepository
	geocoder    maps.Geocoder
	identity    identityClient
	blobs       blobStore
	mailer      accountMailer
	logg        *logger.Logger
	sagaMetrics *metrics.SagaMetrics
	pageSize    int
	passwordLen int
}

// NewService builds the lifecycle service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("establishment repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Categories == nil || params.Tags == nil {
		return nil, fmt.Errorf("vocabulary repositories required")
	}
	if params.Geocoder == nil {
		return nil, fmt.Errorf("geocoder required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity client required")
	}
	if params.Blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	pageSize := params.Search.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultSearchPageSize
	}
	passwordLen := params.Password.TempPasswordLength
	if passwordLen < defaultTempPasswordLength {
		passwordLen = defaultTempPasswordLength
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		categories:  params.Categories,
		tags:        params.Tags,
		geocoder:    params.Geocoder,
		identity:    params.Identity,
		blobs:       params.Blobs,
		mailer:      params.Mailer,
		logg:        params.Logger,
		sagaMetrics: params.SagaMetrics,
		pageSize:    pageSize,
		passwordLen: passwordLen,
	}, nil
}

// Register creates the identity account and the pending establishment. The
// name is checked before anything external is touched; a failed insert
// deletes the freshly created account.
func (s *service) Register(ctx context.Context, input RegisterInput) (*ProfileDTO, error) {
	info := input.Establishment
	if err := validateRegistration(input); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(info.Name)

	exists, err := s.repo.CheckExistsByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check establishment name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "establishment name already in use")
	}

	var (
		lat, lng      float64
		categories    []models.Category
		tags          []models.Tag
		ref           string
		establishment *models.Establishment
	)

	run := saga.New(sagaRegistration, s.logg, s.sagaMetrics).
		Step("geocode-address", func(ctx context.Context) error {
			var err error
			lat, lng, err = s.geocoder.ResolveCoordinates(ctx, info.Address, info.PostalCode, info.City)
			return err
		}, saga.NoCompensation).
		Step("resolve-vocabulary", func(ctx context.Context) error {
			var err error
			categories, tags, err = s.resolveVocabulary(ctx, info.Categories, info.Tags)
			return err
		}, saga.NoCompensation).
		Step("create-identity", func(ctx context.Context) error {
			// the real credential is issued on approval
			password, err := security.GenerateTempPassword(s.passwordLen)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate initial password")
			}
			ref, err = s.identity.CreateAccount(ctx, identity.OwnerInfo{
				FirstName: input.Owner.FirstName,
				LastName:  input.Owner.LastName,
				Email:     input.Owner.Email,
				Password:  password,
			})
			return err
		}, func(ctx context.Context) error {
			return s.identity.DeleteAccount(ctx, ref)
		}).
		Step("assign-role", func(ctx context.Context) error {
			return s.identity.AssignRole(ctx, ref, enums.RoleEstablishment)
		}, saga.NoCompensation).
		Step("persist-establishment", func(ctx context.Context) error {
			establishment = &models.Establishment{
				IdentityRef:     ref,
				Name:            name,
				Description:     strings.TrimSpace(info.Description),
				Address:         strings.TrimSpace(info.Address),
				PostalCode:      strings.TrimSpace(info.PostalCode),
				City:            strings.TrimSpace(info.City),
				Latitude:        lat,
				Longitude:       lng,
				PriceCategory:   info.PriceCategory,
				RequestStatus:   enums.RequestStatusPending,
				Categories:      categories,
				Tags:            tags,
				RatingStatistic: &models.RatingStatistic{},
				BusinessHours:   &models.BusinessHours{},
			}
			if err := s.repo.Create(ctx, establishment); err != nil {
				if isNameConflict(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "establishment name already in use")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create establishment")
			}
			return nil
		}, saga.NoCompensation)

	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithIdentityRef(ctx, ref), "establishment registered")
	return ProfileFromModel(establishment), nil
}

// UpdateRegistrationStatus accepts or rejects a pending establishment. The
// status is written last, after the owner has been sent new credentials.
// Re-applying the current status is tolerated and repeats the side effects.
func (s *service) UpdateRegistrationStatus(ctx context.Context, ref string, status enums.RequestStatus) error {
	if !status.IsValid() || status == enums.RequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be accepted or rejected").
			WithDetails(map[string]any{"status": status.String()})
	}

	establishment, err := s.repo.GetByIdentityRef(ctx, ref, true)
	if err != nil {
		return mapLoadError(err, "establishment")
	}
	if establishment.RequestStatus != enums.RequestStatusPending && establishment.RequestStatus != status {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "registration was already decided").
			WithDetails(map[string]any{
				"current":   establishment.RequestStatus.String(),
				"requested": status.String(),
			})
	}

	ctx = s.logg.WithIdentityRef(ctx, ref)
	if status == enums.RequestStatusAccepted {
		if err := s.sendCredentials(ctx, establishment); err != nil {
			return err
		}
	}

	establishment.RequestStatus = status
	if err := s.repo.Update(ctx, establishment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update registration status")
	}
	s.logg.Info(s.logg.WithField(ctx, "status", status.String()), "registration status updated")
	return nil
}

func (s *service) sendCredentials(ctx context.Context, establishment *models.Establishment) error {
	password, err := security.GenerateTempPassword(s.passwordLen)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	name, email, err := s.identity.GetOwnerNameAndEmail(ctx, establishment.IdentityRef)
	if err != nil {
		return err
	}
	if err := s.identity.ChangePassword(ctx, establishment.IdentityRef, password); err != nil {
		return err
	}
	return s.mailer.SendAccountAcceptedEmail(ctx, name, establishment.Name, email, password)
}

// Delete removes the identity account, every stored picture and finally the
// row. External deletes are not undone when the row turns out to be missing.
func (s *service) Delete(ctx context.Context, ref string) error {
	run := saga.New(sagaDeletion, s.logg, s.sagaMetrics).
		Step("delete-identity", func(ctx context.Context) error {
			return s.identity.DeleteAccount(ctx, ref)
		}, saga.NoCompensation).
		Step("delete-pictures", func(ctx context.Context) error {
			return s.blobs.Delete(ctx, enums.RoleEstablishment, ref, "")
		}, saga.NoCompensation).
		Step("delete-establishment", func(ctx context.Context) error {
			if err := s.repo.DeleteByIdentityRef(ctx, ref); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "establishment not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete establishment")
			}
			return nil
		}, saga.NoCompensation)

	if err := run.Run(ctx); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithIdentityRef(ctx, ref), "establishment deleted")
	return nil
}

// AdjustRating moves one star bucket of the statistic up or down by one.
func (s *service) AdjustRating(ctx context.Context, ratingStatisticID uuid.UUID, star int, increment bool) error {
	if _, ok := models.RatingBucketColumn(star); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": star})
	}

	err := s.repo.AdjustRatingBucket(ctx, ratingStatisticID, star, increment)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "rating statistic not found")
	case errors.Is(err, ErrRatingBucketEmpty):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "rating bucket is already empty").
			WithDetails(map[string]any{"rating": star})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust rating")
	}
}

func (s *service) Search(ctx context.Context, filters SearchFilters, page int) ([]EstablishmentMarker, error) {
	query, err := BuildSearchQuery(filters, page)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Search(ctx, query, pagination.Params{Page: page, Size: s.pageSize})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search establishments")
	}

	markers := make([]EstablishmentMarker, 0, len(rows))
	for i := range rows {
		markers = append(markers, MarkerFromModel(&rows[i]))
	}
	return markers, nil
}

// GetProfile returns the public profile of an accepted establishment.
func (s *service) GetProfile(ctx context.Context, ref string) (*ProfileDTO, error) {
	establishment, err := s.repo.GetByIdentityRef(ctx, ref, false, profilePreloads...)
	if err != nil {
		return nil, mapLoadError(err, "establishment")
	}
	return ProfileFromModel(establishment), nil
}

// GetOwnProfile returns the caller's profile regardless of vetting status.
func (s *service) GetOwnProfile(ctx context.Context, ref string) (*ProfileDTO, error) {
	establishment, err := s.repo.GetByIdentityRef(ctx, ref, true, profilePreloads...)
	if err != nil {
		return nil, mapLoadError(err, "establishment")
	}
	return ProfileFromModel(establishment), nil
}

func (s *service) GetPendingList(ctx context.Context) ([]PendingEstablishmentDTO, error) {
	rows, err := s.repo.GetPendingList(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending establishments")
	}
	out := make([]PendingEstablishmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, PendingFromModel(&rows[i]))
	}
	return out, nil
}

// GetRatingStatisticID resolves the rating statistic of an accepted establishment.
func (s *service) GetRatingStatisticID(ctx context.Context, ref string) (uuid.UUID, error) {
	establishment, err := s.repo.GetByIdentityRef(ctx, ref, false, PreloadRatingStatistic)
	if err != nil {
		return uuid.Nil, mapLoadError(err, "establishment")
	}
	if establishment.RatingStatistic == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "establishment has no rating statistic")
	}
	return establishment.RatingStatistic.ID, nil
}

func (s *service) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	count, err := s.repo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count establishments")
	}
	return count, nil
}

// resolveVocabulary loads the named categories and tags. The vocabularies are
// seeded, so an unknown name is a data-integrity fault rather than bad input.
func (s *service) resolveVocabulary(ctx context.Context, categoryNames, tagNames []string) ([]models.Category, []models.Tag, error) {
	categoryNames = normalizeNames(categoryNames)
	tagNames = normalizeNames(tagNames)

	categories, err := s.categories.FindByNames(ctx, categoryNames)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	if missing := missingNames(categoryNames, categories, func(c models.Category) string { return c.Name }); len(missing) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown category").
			WithDetails(map[string]any{"categories": missing})
	}

	tags, err := s.tags.FindByNames(ctx, tagNames)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tags")
	}
	if missing := missingNames(tagNames, tags, func(t models.Tag) string { return t.Name }); len(missing) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown tag").
			WithDetails(map[string]any{"tags": missing})
	}
	return categories, tags, nil
}

func (s *service) loadOwned(ctx context.Context, ref string, preloads ...string) (*models.Establishment, error) {
	establishment, err := s.repo.GetByIdentityRef(ctx, ref, true, preloads...)
	if err != nil {
		return nil, mapLoadError(err, "establishment")
	}
	return establishment, nil
}

func validateRegistration(input RegisterInput) error {
	info := input.Establishment
	required := []struct{ field, value string }{
		{"name", info.Name},
		{"address", info.Address},
		{"postal_code", info.PostalCode},
		{"city", info.City},
		{"first_name", input.Owner.FirstName},
		{"last_name", input.Owner.LastName},
		{"email", input.Owner.Email},
	}
	missing := []string{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	if !strings.Contains(input.Owner.Email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if !info.PriceCategory.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid price category").
			WithDetails(map[string]any{"price_category": info.PriceCategory.String()})
	}
	return nil
}

func missingNames[T any](requested []string, found []T, nameOf func(T) string) []string {
	have := make(map[string]struct{}, len(found))
	for _, f := range found {
		have[nameOf(f)] = struct{}{}
	}
	var missing []string
	for _, name := range requested {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// isNameConflict matches the Postgres index name or the SQLite column message.
func isNameConflict(err error) bool {
	return db.IsUniqueViolation(err, "idx_establishments_name") || db.IsUniqueViolation(err, "establishments.name")
}

func mapLoadError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}
