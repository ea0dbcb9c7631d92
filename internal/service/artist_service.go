package service

import (
	"context"
	"unicode/utf8"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ArtistInput struct {
	StageName    string
	Bio          string
	Genre        string
	ProfileImage string
}

func (in *ArtistInput) normalize() error {
	in.StageName = validate.Sanitize(in.StageName)
	in.Bio = validate.Sanitize(in.Bio)
	in.Genre = validate.Sanitize(in.Genre)
	if in.StageName == "" {
		return apperr.Validation("stage_name is required")
	}
	if utf8.RuneCountInString(in.StageName) > 100 {
		return apperr.Validation("stage_name must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.Genre) > 50 {
		return apperr.Validation("genre must be at most 50 characters")
	}
	if in.ProfileImage != "" && !isHTTPURL(in.ProfileImage) {
		return apperr.Validation("profile_image must be an http(s) URL")
	}
	return nil
}

// ArtistProfile is an artist with derived participation data.
type ArtistProfile struct {
	*models.Artist
	Wins        int64             `json:"wins"`
	Eligibility EligibilityStatus `json:"eligibility"`
}

type ArtistService struct {
	db          *gorm.DB
	artistRepo  *repository.ArtistRepository
	userRepo    *repository.UserRepository
	paymentRepo *repository.PaymentRepository
	winRepo     *repository.WinRepository
	eligibility *EligibilityService
	log         *zap.Logger
}

func NewArtistService(
	db *gorm.DB,
	artistRepo *repository.ArtistRepository,
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	winRepo *repository.WinRepository,
	eligibility *EligibilityService,
	log *zap.Logger,
) *ArtistService {
	return &ArtistService{
		db:          db,
		artistRepo:  artistRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		winRepo:     winRepo,
		eligibility: eligibility,
		log:         log,
	}
}

// Create opens the user's artist profile and grants the artist role. A
// registration fee paid before the profile existed is applied immediately.
func (s *ArtistService) Create(ctx context.Context, userID uint, in ArtistInput) (*models.Artist, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	artist := &models.Artist{
		UserID:       userID,
		StageName:    in.StageName,
		Bio:          in.Bio,
		Genre:        in.Genre,
		ProfileImage: in.ProfileImage,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		artists := s.artistRepo.WithTx(tx)
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}
		if _, err := artists.GetByUserID(ctx, userID); err == nil {
			return apperr.Conflict("artist profile already exists")
		} else if !isNotFound(err) {
			return err
		}
		if p, err := s.paymentRepo.WithTx(tx).LatestSuccessfulForUser(ctx, userID); err == nil {
			artist.IsPaid = true
			artist.IsVerified = true
			artist.PaymentID = &p.ID
		} else if !isNotFound(err) {
			return err
		}
		if err := artists.Create(ctx, artist); err != nil {
			return conflictOr(err, apperr.Conflict("artist profile already exists"))
		}
		if !u.IsArtist() {
			u.AddRole(domain.RoleArtist)
			return users.Update(ctx, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !artist.IsPaid {
		// a payment may have settled while the profile did not exist yet
		if p, err := s.paymentRepo.LatestSuccessfulForUser(ctx, userID); err == nil {
			if _, err := s.artistRepo.MarkPaid(ctx, userID, p.ID); err != nil {
				return nil, err
			}
			artist.IsPaid, artist.IsVerified, artist.PaymentID = true, true, &p.ID
		}
	}
	s.log.Info("artist profile created", zap.Uint("user_id", userID), zap.Uint("artist_id", artist.ID),
		zap.Bool("is_paid", artist.IsPaid))
	return artist, nil
}

func (s *ArtistService) profile(ctx context.Context, a *models.Artist) (*ArtistProfile, error) {
	wins, err := s.winRepo.CountByArtist(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	elig, err := s.eligibility.Status(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &ArtistProfile{Artist: a, Wins: wins, Eligibility: elig}, nil
}

func (s *ArtistService) GetProfile(ctx context.Context, userID uint) (*ArtistProfile, error) {
	a, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "artist profile")
	}
	return s.profile(ctx, a)
}

// Get returns a verified artist's public profile.
func (s *ArtistService) Get(ctx context.Context, artistID uint) (*ArtistProfile, error) {
	a, err := s.artistRepo.GetByID(ctx, artistID)
	if err != nil {
		return nil, notFound(err, "artist")
	}
	if !a.IsVerified {
		return nil, apperr.NotFound("artist not found")
	}
	return s.profile(ctx, a)
}

// ArtistUpdate carries optional profile edits; nil fields are left alone.
type ArtistUpdate struct {
	StageName    *string
	Bio          *string
	Genre        *string
	ProfileImage *string
}

func (s *ArtistService) UpdateProfile(ctx context.Context, userID uint, upd ArtistUpdate) (*models.Artist, error) {
	a, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "artist profile")
	}
	in := ArtistInput{StageName: a.StageName, Bio: a.Bio, Genre: a.Genre, ProfileImage: a.ProfileImage}
	if upd.StageName != nil {
		in.StageName = *upd.StageName
	}
	if upd.Bio != nil {
		in.Bio = *upd.Bio
	}
	if upd.Genre != nil {
		in.Genre = *upd.Genre
	}
	if upd.ProfileImage != nil {
		in.ProfileImage = *upd.ProfileImage
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a.StageName, a.Bio, a.Genre, a.ProfileImage = in.StageName, in.Bio, in.Genre, in.ProfileImage
	if err := s.artistRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ArtistService) List(ctx context.Context, page, limit int) ([]models.Artist, int64, error) {
	return s.artistRepo.ListVerified(ctx, page, limit)
}

// CheckEligibility reports whether the user's artist profile may enter a contest now.
func (s *ArtistService) CheckEligibility(ctx context.Context, userID uint) (EligibilityStatus, error) {
	a, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return EligibilityStatus{}, notFound(err, "artist profile")
	}
	return s.eligibility.Status(ctx, a.ID)
}
