package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	repo "github.com/dmitrijs2005/sharebox/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resetRecorder []string

func (r *resetRecorder) Reset(code string) { *r = append(*r, code) }

func newTestService(t *testing.T) (*Service, *repo.MemoryRepository, *resetRecorder) {
	t.Helper()
	r := repo.NewMemoryRepository()
	rec := &resetRecorder{}
	svc, err := NewService(r, []byte("profile-secret"), rec, logging.Nop())
	require.NoError(t, err)
	return svc, r, rec
}

func validInput() Input {
	return Input{
		Endpoint:    "https://s3.example.com",
		Region:      "eu-central-1",
		Bucket:      "team",
		AccessKey:   "AKIA123",
		SecretKey:   "super-secret-key",
		Description: "team share",
	}
}

var _ storage.SettingsSource = (*Service)(nil)

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(repo.NewMemoryRepository(), nil, nil, logging.Nop())
	assert.ErrorIs(t, err, common.ErrorMissingSetting)
}

func TestCreate_SealsSecret(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Len(t, v.Code, CodeLength)
	assert.Equal(t, "team", v.Bucket)

	stored, err := r.Get(ctx, v.Code)
	require.NoError(t, err)
	assert.NotContains(t, string(stored.SealedSecret), "super-secret-key")

	s, err := svc.Settings(ctx, v.Code)
	require.NoError(t, err)
	assert.Equal(t, storage.Settings{
		Endpoint:  "https://s3.example.com",
		Region:    "eu-central-1",
		AccessKey: "AKIA123",
		SecretKey: "super-secret-key",
		Bucket:    "team",
	}, s)
}

func TestViewsNeverExposeSecret(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	got, err := svc.Get(ctx, v.Code)
	require.NoError(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)

	for _, x := range []any{v, got, list} {
		b, err := json.Marshal(x)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "super-secret-key")
		assert.NotContains(t, string(b), "secret_key")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	for name, mutate := range map[string]func(*Input){
		"bad endpoint":     func(in *Input) { in.Endpoint = "not a url" },
		"no bucket":        func(in *Input) { in.Bucket = "" },
		"no secret":        func(in *Input) { in.SecretKey = "" },
		"long description": func(in *Input) { in.Description = strings.Repeat("x", 257) },
	} {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestCreate_RetriesOnCodeCollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	svc.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "AAAAAAAA", first.Code)
	assert.Equal(t, "BBBBBBBB", second.Code)
}

func TestCreate_GivesUpAfterCollisions(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.newCode = func() (string, error) { return "AAAAAAAA", nil }

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestList_Summaries(t *testing.T) {
	svc, _, _ := newTestService(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}

	a, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	in := validInput()
	in.Description = "second"
	b, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Summary{Code: b.Code, Description: "second", CreatedAt: base.Add(2 * time.Minute)}, list[0])
	assert.Equal(t, a.Code, list[1].Code)
}

func TestUpdate_PartialAndResets(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	bucket := "renamed"
	got, err := svc.Update(ctx, v.Code, Patch{Bucket: &bucket})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Bucket)
	assert.Equal(t, "AKIA123", got.AccessKey)

	s, err := svc.Settings(ctx, v.Code)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-key", s.SecretKey)

	secret := "rotated"
	_, err = svc.Update(ctx, v.Code, Patch{SecretKey: &secret})
	require.NoError(t, err)
	s, err = svc.Settings(ctx, v.Code)
	require.NoError(t, err)
	assert.Equal(t, "rotated", s.SecretKey)

	assert.Equal(t, resetRecorder{v.Code, v.Code}, *rec)
}

func TestUpdate_Errors(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing1", Patch{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	empty := ""
	_, err = svc.Update(ctx, v.Code, Patch{Region: &empty})
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, *rec)
}

func TestDelete(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, v.Code))
	assert.Equal(t, resetRecorder{v.Code}, *rec)

	assert.ErrorIs(t, svc.Delete(ctx, v.Code), common.ErrorNotFound)
	_, err = svc.Settings(ctx, v.Code)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_UsesTx(t *testing.T) {
	r := repo.NewMemoryRepository()
	rec := &resetRecorder{}
	calls := 0
	var fail error
	tx := func(ctx context.Context, fn func(context.Context, repo.Repository) error) error {
		calls++
		if err := fn(ctx, r); err != nil {
			return err
		}
		return fail
	}
	svc, err := NewService(r, []byte("profile-secret"), rec, logging.Nop(), WithTx(tx))
	require.NoError(t, err)
	ctx := context.Background()

	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	desc := "inside tx"
	_, err = svc.Update(ctx, v.Code, Patch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	fail = errors.New("commit failed")
	_, err = svc.Update(ctx, v.Code, Patch{Description: &desc})
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 2, calls)
	assert.Equal(t, resetRecorder{v.Code}, *rec, "failed commit must not drop clients")
}
