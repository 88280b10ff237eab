package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
)

type testUserRepo struct{}

func (testUserRepo) CreateUser(ctx context.Context, db *gorm.DB, name, email, hash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, name, email, hash)
}
func (testUserRepo) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}
func (testUserRepo) GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUserByID(ctx, db, id)
}

func newAuthFixture(t *testing.T, allowed ...string) *leadFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newLeadDB(t)
	svc := services.NewAuthService(db, testUserRepo{}, config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AllowedEmails: allowed,
	})
	svc.Cost = bcrypt.MinCost
	h := New(nil, nil, svc, "")

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/user",
		middleware.BearerAuth(svc, middleware.ErrIs(services.ErrInvalidToken, services.ErrAuthDisabled)),
		h.CurrentUser)
	return &leadFixture{db: db, router: r}
}

func decodeAuth(t *testing.T, body []byte) AuthResponse {
	t.Helper()
	var resp AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	return resp
}

func TestAuthFlow(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(t, http.MethodPost, "/auth/register", `{"name":"Asha","email":"Asha@Example.com","password":"pw1"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register -> %d %s", w.Code, w.Body.String())
	}
	reg := decodeAuth(t, w.Body.Bytes())
	if !reg.Success || reg.Token == "" || reg.User.Email != "asha@example.com" {
		t.Fatalf("register body = %+v", reg)
	}

	w = f.do(t, http.MethodPost, "/auth/register", `{"name":"Asha","email":"asha@example.com","password":"pw1"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register -> %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/auth/login", `{"email":"asha@example.com","password":"pw1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login -> %d %s", w.Code, w.Body.String())
	}
	login := decodeAuth(t, w.Body.Bytes())

	w = f.do(t, http.MethodGet, "/auth/user", "", map[string]string{"Authorization": "Bearer " + login.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("current user -> %d %s", w.Code, w.Body.String())
	}
	var me UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("json: %v", err)
	}
	if me.User.ID != reg.User.ID || me.User.Name != "Asha" {
		t.Fatalf("me = %+v", me)
	}
}

func TestAuth_Rejections(t *testing.T) {
	f := newAuthFixture(t, "boss@example.com")

	if w := f.do(t, http.MethodPost, "/auth/register", `{"name":"Asha"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("incomplete register -> %d", w.Code)
	}
	for _, email := range []string{"asha@example.com", "boss@example.com"} {
		body := `{"name":"X","email":"` + email + `","password":"pw"}`
		if w := f.do(t, http.MethodPost, "/auth/register", body, nil); w.Code != http.StatusCreated {
			t.Fatalf("register %s -> %d", email, w.Code)
		}
	}

	if w := f.do(t, http.MethodPost, "/auth/login", `{"email":"asha@example.com","password":"pw"}`, nil); w.Code != http.StatusForbidden {
		t.Fatalf("not allowlisted -> %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/auth/login", `{"email":"boss@example.com","password":"nope"}`, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password -> %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/auth/user", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token -> %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/auth/user", "", map[string]string{"Authorization": "Bearer junk"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("junk token -> %d", w.Code)
	}
}
