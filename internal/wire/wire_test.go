package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/data/repository/repotest"
	"content-catalog/pkg/mailer"
	"content-catalog/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t      *testing.T
	app    *App
	store  *repotest.Store
	mail   *mailer.LogMailer
	tokens *utils.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &utils.Config{
		JWT:       utils.JWTConfig{Secret: "router-secret", ExpiryHours: 1},
		Code:      utils.CodeConfig{ExpiryMinutes: 10, Length: 6},
		RateLimit: utils.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	store := repotest.NewStore()
	mail := mailer.NewLogMailer(zap.NewNop())

	return &testServer{
		t:      t,
		app:    Wiring(store.Repository(), cfg, mail, zap.NewNop()),
		store:  store,
		mail:   mail,
		tokens: utils.NewTokenManager(cfg.JWT),
	}
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// user creates a user directly in the store and returns a token for it.
func (s *testServer) user(username string, role entity.UserRole, superuser bool) string {
	s.t.Helper()
	now := time.Now()
	u := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		IsSuperuser:  superuser,
	}
	require.NoError(s.t, s.store.Repository().User.Create(context.Background(), u))

	token, _, err := s.tokens.Generate(u.ID, u.Username)
	require.NoError(s.t, err)
	return token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type titleData struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Rating   *float64 `json:"rating"`
	Category *struct {
		Slug string `json:"slug"`
	} `json:"category"`
	Genre []struct {
		Slug string `json:"slug"`
	} `json:"genre"`
}

// seed creates a category, a genre and a title as admin.
func (s *testServer) seed(admin string) string {
	s.t.Helper()

	rec, _ := s.do(http.MethodPost, "/v1/categories/", admin, map[string]string{"name": "Films", "slug": "films"})
	require.Equal(s.t, http.StatusCreated, rec.Code)
	rec, _ = s.do(http.MethodPost, "/v1/genres/", admin, map[string]string{"name": "Drama", "slug": "drama"})
	require.Equal(s.t, http.StatusCreated, rec.Code)

	rec, env := s.do(http.MethodPost, "/v1/titles/", admin, map[string]any{
		"name": "The Movie", "year": 1999, "genre": []string{"drama"}, "category": "films",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code)
	return decode[titleData](s.t, env.Data).ID
}

func TestSignupTokenFlow(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodPost, "/v1/auth/signup/", "", map[string]string{"email": "neo@example.com", "username": "neo"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"neo@example.com","username":"neo"}`, string(env.Data))

	msg, ok := s.mail.Last("neo@example.com")
	require.True(t, ok)
	code := regexp.MustCompile(`code is (\d+)`).FindStringSubmatch(msg.Body)[1]

	rec, _ = s.do(http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "ghost", "confirmation_code": code})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "neo", "confirmation_code": code})
	require.Equal(t, http.StatusOK, rec.Code)
	issued := decode[struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}](t, env.Data)
	token := issued.Token
	require.NotEmpty(t, token)
	assert.Equal(t, time.UTC, issued.ExpiresAt.Location())
	assert.True(t, issued.ExpiresAt.After(time.Now()))

	rec, env = s.do(http.MethodGet, "/v1/users/me/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"role":"user"`)

	rec, env = s.do(http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "neo", "confirmation_code": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "confirmation_code")
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "me@example.com", "username": "me"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "username")

	rec, _ = s.do(http.MethodPost, "/v1/auth/signup", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPermissionMatrix(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", entity.RoleUser, true)
	user := s.user("neo", entity.RoleUser, false)
	moderator := s.user("oracle", entity.RoleModerator, false)
	titleID := s.seed(admin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"list categories anonymous", http.MethodGet, "/v1/categories/", "", nil, http.StatusOK},
		{"create category anonymous", http.MethodPost, "/v1/categories/", "", map[string]string{"name": "X", "slug": "x"}, http.StatusUnauthorized},
		{"create category user", http.MethodPost, "/v1/categories/", user, map[string]string{"name": "X", "slug": "x"}, http.StatusForbidden},
		{"create category moderator", http.MethodPost, "/v1/categories/", moderator, map[string]string{"name": "X", "slug": "x"}, http.StatusForbidden},
		{"duplicate category", http.MethodPost, "/v1/categories/", admin, map[string]string{"name": "F", "slug": "films"}, http.StatusBadRequest},
		{"retrieve category not allowed", http.MethodGet, "/v1/categories/films/", admin, nil, http.StatusMethodNotAllowed},
		{"patch genre not allowed", http.MethodPatch, "/v1/genres/drama/", admin, nil, http.StatusMethodNotAllowed},
		{"list titles anonymous", http.MethodGet, "/v1/titles/", "", nil, http.StatusOK},
		{"get title anonymous", http.MethodGet, "/v1/titles/" + titleID + "/", "", nil, http.StatusOK},
		{"get missing title", http.MethodGet, "/v1/titles/" + uuid.NewString() + "/", "", nil, http.StatusNotFound},
		{"malformed title id", http.MethodGet, "/v1/titles/42/", "", nil, http.StatusNotFound},
		{"put title not allowed", http.MethodPut, "/v1/titles/" + titleID + "/", admin, nil, http.StatusMethodNotAllowed},
		{"patch title user", http.MethodPatch, "/v1/titles/" + titleID + "/", user, map[string]any{"year": 2000}, http.StatusForbidden},
		{"invalid token on read", http.MethodGet, "/v1/titles/", "garbage", nil, http.StatusUnauthorized},
		{"users list user", http.MethodGet, "/v1/users/", user, nil, http.StatusForbidden},
		{"users list anonymous", http.MethodGet, "/v1/users/", "", nil, http.StatusUnauthorized},
		{"users list admin", http.MethodGet, "/v1/users/?search=ne", admin, nil, http.StatusOK},
		{"me anonymous", http.MethodGet, "/v1/users/me/", "", nil, http.StatusUnauthorized},
		{"user detail admin", http.MethodGet, "/v1/users/neo/", admin, nil, http.StatusOK},
		{"user detail missing", http.MethodGet, "/v1/users/ghost/", admin, nil, http.StatusNotFound},
		{"reviews anonymous read", http.MethodGet, "/v1/titles/" + titleID + "/reviews/", "", nil, http.StatusOK},
		{"reviews anonymous write", http.MethodPost, "/v1/titles/" + titleID + "/reviews/", "", map[string]any{"text": "x", "score": 5}, http.StatusUnauthorized},
		{"reviews of missing title", http.MethodGet, "/v1/titles/" + uuid.NewString() + "/reviews/", "", nil, http.StatusNotFound},
		{"health", http.MethodGet, "/health", "", nil, http.StatusOK},
		{"unknown path", http.MethodGet, "/v1/nothing/", "", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestReviewAndCommentFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", entity.RoleAdmin, false)
	author := s.user("neo", entity.RoleUser, false)
	stranger := s.user("smith", entity.RoleUser, false)
	moderator := s.user("oracle", entity.RoleModerator, false)
	titleID := s.seed(admin)

	reviews := "/v1/titles/" + titleID + "/reviews/"

	rec, env := s.do(http.MethodPost, reviews, author, map[string]any{"text": "Great", "score": 8})
	require.Equal(t, http.StatusCreated, rec.Code)
	review := decode[struct {
		ID     string `json:"id"`
		Author string `json:"author"`
	}](t, env.Data)
	assert.Equal(t, "neo", review.Author)

	rec, _ = s.do(http.MethodPost, reviews, author, map[string]any{"text": "Again", "score": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, reviews, stranger, map[string]any{"text": "Bad", "score": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, reviews, stranger, map[string]any{"text": "Meh", "score": 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = s.do(http.MethodGet, "/v1/titles/"+titleID+"/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	title := decode[titleData](t, env.Data)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 6.0, *title.Rating, 0.001)

	reviewPath := reviews + review.ID + "/"
	rec, _ = s.do(http.MethodPatch, reviewPath, stranger, map[string]any{"score": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodPatch, reviewPath, moderator, map[string]any{"score": 2})
	assert.Equal(t, http.StatusOK, rec.Code)

	comments := reviewPath + "comments/"
	rec, env = s.do(http.MethodPost, comments, stranger, map[string]string{"text": "disagree"})
	require.Equal(t, http.StatusCreated, rec.Code)
	commentID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	rec, env = s.do(http.MethodGet, comments, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	rec, _ = s.do(http.MethodDelete, comments+commentID+"/", author, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodDelete, comments+commentID+"/", stranger, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(http.MethodDelete, reviewPath, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = s.do(http.MethodGet, reviewPath, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTitleAdminFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", entity.RoleAdmin, false)
	titleID := s.seed(admin)

	rec, env := s.do(http.MethodPost, "/v1/titles/", admin, map[string]any{
		"name": "Bad", "year": 2000, "genre": []string{"horror"}, "category": "films",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "genre")

	rec, _ = s.do(http.MethodGet, "/v1/titles/?genre=drama&year=1999", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodDelete, "/v1/categories/films/", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = s.do(http.MethodGet, "/v1/titles/"+titleID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[titleData](t, env.Data).Category)

	rec, _ = s.do(http.MethodDelete, "/v1/titles/"+titleID+"/", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = s.do(http.MethodDelete, "/v1/titles/"+titleID+"/", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTitleTextIsStoredVerbatim(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", entity.RoleAdmin, false)
	s.seed(admin)

	rec, env := s.do(http.MethodPost, "/v1/titles/", admin, map[string]any{
		"name": "Tom & Jerry", "year": 1940, "description": `5 > 3 "quoted" <b>bold</b>`,
		"genre": []string{"drama"}, "category": "films",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[titleData](t, env.Data)
	assert.Equal(t, "Tom & Jerry", created.Name)
	require.NotNil(t, created.Description)
	assert.Equal(t, `5 > 3 "quoted" bold`, *created.Description)

	rec, env = s.do(http.MethodGet, "/v1/titles/?name=tom%20%26%20jerry", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data       []titleData `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, env.Data)
	assert.Equal(t, int64(1), list.Pagination.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)
}

func TestHugePageIsClamped(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", entity.RoleAdmin, false)
	s.seed(admin)

	for _, path := range []string{
		"/v1/titles/?page=9223372036854775807",
		"/v1/titles/?page=922337203685477580",
		"/v1/genres/?page=2147483647&per_page=100",
	} {
		rec, env := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, env.Status, path)
	}
}

func TestUpdateMeIgnoresRole(t *testing.T) {
	s := newTestServer(t)
	user := s.user("neo", entity.RoleUser, false)

	rec, env := s.do(http.MethodPatch, "/v1/users/me/", user, map[string]string{"role": "admin", "bio": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"role":"user"`)
	assert.Contains(t, string(env.Data), `"bio":"hi"`)

	rec, _ = s.do(http.MethodGet, "/v1/users/", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.app = Wiring(s.store.Repository(), &utils.Config{
		JWT:       utils.JWTConfig{Secret: "router-secret"},
		Code:      utils.CodeConfig{ExpiryMinutes: 10, Length: 6},
		RateLimit: utils.RateLimitConfig{RPS: 0.001, Burst: 1},
	}, s.mail, zap.NewNop())

	body := map[string]string{"username": "ghost", "confirmation_code": "123456"}
	rec, _ := s.do(http.MethodPost, "/v1/auth/token/", "", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = s.do(http.MethodPost, "/v1/auth/token/", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes are not throttled
	rec, _ = s.do(http.MethodGet, "/v1/genres/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitIgnoresForwardedHeaders(t *testing.T) {
	s := newTestServer(t)
	s.app = Wiring(s.store.Repository(), &utils.Config{
		JWT:       utils.JWTConfig{Secret: "router-secret"},
		Code:      utils.CodeConfig{ExpiryMinutes: 10, Length: 6},
		RateLimit: utils.RateLimitConfig{RPS: 0.001, Burst: 1},
	}, s.mail, zap.NewNop())

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		body := bytes.NewBufferString(`{"username":"ghost","confirmation_code":"123456"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/token/", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))

		rec := httptest.NewRecorder()
		s.app.Router.ServeHTTP(rec, req)
		codes[rec.Code]++
	}

	assert.Equal(t, 1, codes[http.StatusNotFound])
	assert.Equal(t, 19, codes[http.StatusTooManyRequests])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/v1/genres/", "", nil)

	rec, _ := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/v1/genres`)
}
