package usecase

import (
	"context"
	"regexp"
	"testing"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/data/repository/repotest"
	"content-catalog/internal/dto/request"
	"content-catalog/pkg/mailer"
	"content-catalog/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc    *Service
	store  *repotest.Store
	mail   *mailer.LogMailer
	tokens *utils.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &utils.Config{
		JWT:  utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		Code: utils.CodeConfig{ExpiryMinutes: 30, Length: 6},
	}
	store := repotest.NewStore()
	mail := mailer.NewLogMailer(zap.NewNop())
	tokens := utils.NewTokenManager(cfg.JWT)

	return &fixture{
		svc:    NewService(store.Repository(), cfg, mail, tokens, zap.NewNop()),
		store:  store,
		mail:   mail,
		tokens: tokens,
	}
}

var codePattern = regexp.MustCompile(`code is (\d+)`)

// lastCode pulls the most recent confirmation code mailed to email.
func (f *fixture) lastCode(t *testing.T, email string) string {
	t.Helper()
	msg, ok := f.mail.Last(email)
	require.True(t, ok, "no mail sent to %s", email)
	m := codePattern.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2)
	return m[1]
}

func (f *fixture) addUser(t *testing.T, username string, role entity.UserRole) Actor {
	t.Helper()
	now := time.Now()
	u := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
	}
	require.NoError(t, f.store.Repository().User.Create(context.Background(), u))
	return Actor{ID: u.ID, Role: u.EffectiveRole()}
}

// seedCatalog creates one category, two genres and a title using them.
func (f *fixture) seedCatalog(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Category.CreateCategory(ctx, &request.CreateCategoryRequest{Name: "Films", Slug: "films"})
	require.NoError(t, err)
	_, err = f.svc.Genre.CreateGenre(ctx, &request.CreateGenreRequest{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)
	_, err = f.svc.Genre.CreateGenre(ctx, &request.CreateGenreRequest{Name: "Comedy", Slug: "comedy"})
	require.NoError(t, err)

	title, err := f.svc.Title.CreateTitle(ctx, &request.CreateTitleRequest{
		Name:     "The Movie",
		Year:     1999,
		Genre:    []string{"drama", "comedy"},
		Category: "films",
	})
	require.NoError(t, err)
	return title.ID
}
