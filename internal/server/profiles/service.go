// Package profiles manages connection profiles: named store settings that a
// session can select instead of the server defaults.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/cryptox"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/server/models"
	repo "github.com/dmitrijs2005/sharebox/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"github.com/go-playground/validator/v10"
)

const (
	CodeLength        = 8
	maxCreateAttempts = 5
)

// Input holds the fields of a new profile.
type Input struct {
	Endpoint    string `json:"endpoint" validate:"required,url"`
	Region      string `json:"region" validate:"required"`
	Bucket      string `json:"bucket" validate:"required"`
	AccessKey   string `json:"access_key" validate:"required"`
	SecretKey   string `json:"secret_key" validate:"required"`
	Description string `json:"description" validate:"max=256"`
}

// Patch changes the non-nil fields of a profile.
type Patch struct {
	Endpoint    *string `json:"endpoint"`
	Region      *string `json:"region"`
	Bucket      *string `json:"bucket"`
	AccessKey   *string `json:"access_key"`
	SecretKey   *string `json:"secret_key"`
	Description *string `json:"description"`
}

// View is a profile as returned to clients. The secret key is never
// included.
type View struct {
	Code        string    `json:"code"`
	Endpoint    string    `json:"endpoint"`
	Region      string    `json:"region"`
	Bucket      string    `json:"bucket"`
	AccessKey   string    `json:"access_key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is the listing form of a profile.
type Summary struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resetter drops cached store clients built from a profile.
type Resetter interface {
	Reset(code string)
}

// TxFunc runs fn with a repository whose calls share one transaction.
type TxFunc func(ctx context.Context, fn func(ctx context.Context, r repo.Repository) error) error

type Option func(*Service)

// WithTx makes Update read and write the profile in one transaction.
func WithTx(tx TxFunc) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

type Service struct {
	repo     repo.Repository
	tx       TxFunc
	box      *cryptox.SecretBox
	resetter Resetter
	logger   logging.Logger
	validate *validator.Validate
	newCode  func() (string, error)
	now      func() time.Time
}

// NewService seals secret keys with a box derived from secret. resetter
// may be nil.
func NewService(r repo.Repository, secret []byte, resetter Resetter, logger logging.Logger, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("profile secret: %w", common.ErrorMissingSetting)
	}
	box, err := cryptox.NewSecretBox(secret)
	if err != nil {
		return nil, err
	}
	s := &Service{
		repo:     r,
		box:      box,
		resetter: resetter,
		logger:   logger,
		validate: validator.New(),
		newCode:  func() (string, error) { return common.MakeRandCode(CodeLength) },
		now:      time.Now,
	}
	s.tx = func(ctx context.Context, fn func(context.Context, repo.Repository) error) error {
		return fn(ctx, s.repo)
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Service) check(in Input) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorValidation, err)
	}
	return nil
}

func toView(p *models.Profile) *View {
	return &View{
		Code:        p.Code,
		Endpoint:    p.Endpoint,
		Region:      p.Region,
		Bucket:      p.Bucket,
		AccessKey:   p.AccessKey,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// Create stores a new profile under a fresh random code.
func (s *Service) Create(ctx context.Context, in Input) (*View, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	sealed, err := s.box.Seal([]byte(in.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("seal secret: %w", err)
	}

	p := &models.Profile{
		Endpoint:     in.Endpoint,
		Region:       in.Region,
		Bucket:       in.Bucket,
		AccessKey:    in.AccessKey,
		SealedSecret: sealed,
		Description:  in.Description,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	for attempt := 1; ; attempt++ {
		if p.Code, err = s.newCode(); err != nil {
			return nil, err
		}
		err = s.repo.Create(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, common.ErrorConflict) || attempt == maxCreateAttempts {
			return nil, err
		}
	}

	s.logger.Info(ctx, "profile created", "code", p.Code, "bucket", p.Bucket)
	return toView(p), nil
}

func (s *Service) Get(ctx context.Context, code string) (*View, error) {
	p, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	return toView(p), nil
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	ps, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(ps))
	for i, p := range ps {
		out[i] = Summary{Code: p.Code, Description: p.Description, CreatedAt: p.CreatedAt}
	}
	return out, nil
}

// Update applies patch and drops any client built from the old settings.
func (s *Service) Update(ctx context.Context, code string, patch Patch) (*View, error) {
	var p *models.Profile
	err := s.tx(ctx, func(ctx context.Context, r repo.Repository) error {
		var err error
		if p, err = r.Get(ctx, code); err != nil {
			return err
		}
		if err = s.apply(p, patch); err != nil {
			return err
		}
		return r.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.reset(code)
	s.logger.Info(ctx, "profile updated", "code", code)
	return toView(p), nil
}

// apply validates p with patch applied and writes the result into p.
func (s *Service) apply(p *models.Profile, patch Patch) error {
	secret, err := s.box.Open(p.SealedSecret)
	if err != nil {
		return fmt.Errorf("open secret of %q: %w", p.Code, err)
	}
	in := Input{
		Endpoint:    p.Endpoint,
		Region:      p.Region,
		Bucket:      p.Bucket,
		AccessKey:   p.AccessKey,
		SecretKey:   string(secret),
		Description: p.Description,
	}
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&in.Endpoint, patch.Endpoint},
		{&in.Region, patch.Region},
		{&in.Bucket, patch.Bucket},
		{&in.AccessKey, patch.AccessKey},
		{&in.SecretKey, patch.SecretKey},
		{&in.Description, patch.Description},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if err := s.check(in); err != nil {
		return err
	}

	if patch.SecretKey != nil {
		if p.SealedSecret, err = s.box.Seal([]byte(in.SecretKey)); err != nil {
			return fmt.Errorf("seal secret: %w", err)
		}
	}
	p.Endpoint, p.Region, p.Bucket, p.AccessKey, p.Description =
		in.Endpoint, in.Region, in.Bucket, in.AccessKey, in.Description
	return nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.reset(code)
	s.logger.Info(ctx, "profile deleted", "code", code)
	return nil
}

// Settings resolves code to store settings, implementing
// storage.SettingsSource.
func (s *Service) Settings(ctx context.Context, code string) (storage.Settings, error) {
	p, err := s.repo.Get(ctx, code)
	if err != nil {
		return storage.Settings{}, err
	}
	secret, err := s.box.Open(p.SealedSecret)
	if err != nil {
		return storage.Settings{}, fmt.Errorf("open secret of %q: %w", code, err)
	}
	return storage.Settings{
		Endpoint:  p.Endpoint,
		Region:    p.Region,
		AccessKey: p.AccessKey,
		SecretKey: string(secret),
		Bucket:    p.Bucket,
	}, nil
}

func (s *Service) reset(code string) {
	if s.resetter != nil {
		s.resetter.Reset(code)
	}
}
