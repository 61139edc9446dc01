package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
	"github.com/cyco/cyco-engine/internal/core/service"
	"github.com/cyco/cyco-engine/internal/infrastructure/http/handlers"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *u
	clone.ID = fmt.Sprintf("%024x", r.nextID)
	r.users[u.Email] = &clone
	out := clone
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	clone.Wishlist = append([]domain.MovieRef(nil), u.Wishlist...)
	return &clone, nil
}

func (r *memUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memUserRepo) SetRole(_ context.Context, id, role string) (ports.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(id) != 24 {
		return ports.UpdateOutcome{}, domain.ErrInvalidID
	}
	for _, u := range r.users {
		if u.ID != id {
			continue
		}
		if u.Role == role {
			return ports.UpdateOutcome{MatchedCount: 1}, nil
		}
		u.Role = role
		return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return ports.UpdateOutcome{}, nil
}

func (r *memUserRepo) AddToWishlist(_ context.Context, email string, movie domain.MovieRef) (ports.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok || u.HasInWishlist(movie.ID) {
		return ports.UpdateOutcome{}, nil
	}
	u.Wishlist = append(u.Wishlist, movie)
	return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
}

type memForumRepo struct {
	mu      sync.Mutex
	queries []*domain.ForumQuery
}

func (r *memForumRepo) Create(_ context.Context, q *domain.ForumQuery) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *q
	clone.ID = fmt.Sprintf("%024x", len(r.queries)+1)
	r.queries = append(r.queries, &clone)
	return clone.ID, nil
}

func (r *memForumRepo) List(context.Context) ([]*domain.ForumQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries, nil
}

func (r *memForumRepo) SetViews(_ context.Context, id string, views int64) (ports.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(id) != 24 {
		return ports.UpdateOutcome{}, domain.ErrInvalidID
	}
	for _, q := range r.queries {
		if q.ID == id {
			if q.Views == views {
				return ports.UpdateOutcome{MatchedCount: 1}, nil
			}
			q.Views = views
			return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return ports.UpdateOutcome{}, nil
}

type memCatalogRepo struct {
	movies []domain.Document
}

func (r *memCatalogRepo) ListMovies(context.Context) ([]domain.Document, error) { return r.movies, nil }

func (r *memCatalogRepo) InsertMovie(_ context.Context, doc domain.Document) (string, error) {
	r.movies = append(r.movies, doc)
	return "m1", nil
}

func (r *memCatalogRepo) ListSeries(context.Context) ([]domain.Document, error) {
	return []domain.Document{{"title": "Dark"}}, nil
}

type memPaymentRepo struct{}

func (memPaymentRepo) Insert(context.Context, *domain.PaymentRecord) (string, error) {
	return "pay-1", nil
}

type fixedProcessor struct{}

func (fixedProcessor) CreatePaymentIntent(_ context.Context, req ports.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	return &domain.PaymentIntent{
		ClientSecret: fmt.Sprintf("secret_%d_%s", req.AmountMinor, req.Currency),
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
	}, nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	e     *echo.Echo
	users *memUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	users := newMemUserRepo()
	tokens := service.NewTokenService("test-secret", time.Hour)

	e := NewRouter(Dependencies{
		Auth:         service.NewAuthService(users, tokens),
		Tokens:       tokens,
		Users:        service.NewUserService(users, log),
		Catalog:      service.NewCatalogService(&memCatalogRepo{}, log),
		Forum:        service.NewForumService(&memForumRepo{}, log),
		Payments:     service.NewPaymentService(fixedProcessor{}, memPaymentRepo{}, nil, log),
		HealthChecks: map[string]handlers.Check{},
		Log:          log,
	}, Options{CORSOrigins: []string{"http://localhost:5173"}})

	return &fixture{e: e, users: users}
}

func (f *fixture) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()
	code, resp := f.do(t, http.MethodPost, "/jwt", fmt.Sprintf(`{"email":%q}`, email), "")
	if code != http.StatusOK {
		t.Fatalf("/jwt: expected 200, got %d", code)
	}
	return resp["token"].(string)
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestRouter_AccessControlAndIdempotentMutations(t *testing.T) {
	f := newFixture(t)
	f.users.users["root@x.com"] = &domain.User{ID: fmt.Sprintf("%024x", 999), Email: "root@x.com", Role: domain.RoleAdmin}

	// Register, then duplicate register.
	code, _ := f.do(t, http.MethodPost, "/register", `{"username":"u","email":"u@x.com","password":"pw"}`, "")
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", code)
	}
	code, resp := f.do(t, http.MethodPost, "/register", `{"username":"other","email":"u@x.com","password":"pw2"}`, "")
	if code != http.StatusConflict || resp["error"] != true {
		t.Fatalf("duplicate register: expected 409, got %d %v", code, resp)
	}

	userToken := f.token(t, "u@x.com")

	// Not an admin yet.
	code, resp = f.do(t, http.MethodGet, "/users/admin/u@x.com", "", userToken)
	if code != http.StatusOK || resp["admin"] != false {
		t.Fatalf("admin check: expected false, got %d %v", code, resp)
	}

	// Promotion requires an admin caller.
	code, resp = f.do(t, http.MethodGet, "/user/u@x.com", "", "")
	if code != http.StatusOK {
		t.Fatalf("get user: expected 200, got %d", code)
	}
	userID := resp["_id"].(string)
	if _, ok := resp["password_hash"]; ok {
		t.Fatal("password hash must not be serialised")
	}

	code, _ = f.do(t, http.MethodPatch, "/users/admin/"+userID, "", userToken)
	if code != http.StatusForbidden {
		t.Fatalf("promote by non-admin: expected 403, got %d", code)
	}
	code, _ = f.do(t, http.MethodPatch, "/users/admin/"+userID, "", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("promote without token: expected 401, got %d", code)
	}

	rootToken := f.token(t, "root@x.com")
	code, resp = f.do(t, http.MethodPatch, "/users/admin/"+userID, "", rootToken)
	if code != http.StatusOK || resp["modifiedCount"] != float64(1) {
		t.Fatalf("promote: expected 200 with modifiedCount 1, got %d %v", code, resp)
	}
	code, resp = f.do(t, http.MethodPatch, "/users/admin/"+userID, "", rootToken)
	if code != http.StatusOK || resp["matchedCount"] != float64(1) || resp["modifiedCount"] != float64(0) {
		t.Fatalf("repeat promote: expected no-op, got %d %v", code, resp)
	}
	code, _ = f.do(t, http.MethodPatch, "/users/admin/not-an-id", "", rootToken)
	if code != http.StatusBadRequest {
		t.Fatalf("promote invalid id: expected 400, got %d", code)
	}

	// Same token now reports admin.
	code, resp = f.do(t, http.MethodGet, "/users/admin/u@x.com", "", userToken)
	if code != http.StatusOK || resp["admin"] != true {
		t.Fatalf("admin check after promote: expected true, got %d %v", code, resp)
	}

	// Asking about someone else is a soft deny.
	code, resp = f.do(t, http.MethodGet, "/users/admin/root@x.com", "", userToken)
	if code != http.StatusOK || resp["admin"] != false {
		t.Fatalf("cross-user admin check: expected false, got %d %v", code, resp)
	}

	// Wishlist: once, then refused.
	body := `{"user":{"email":"u@x.com"},"movie":{"_id":"m1","title":"Heat"}}`
	code, _ = f.do(t, http.MethodPost, "/wishlist", body, "")
	if code != http.StatusOK {
		t.Fatalf("wishlist add: expected 200, got %d", code)
	}
	code, resp = f.do(t, http.MethodPost, "/wishlist", body, "")
	if code != http.StatusForbidden || resp["message"] != "Already added to wishlist" {
		t.Fatalf("duplicate wishlist: expected 403, got %d %v", code, resp)
	}
	code, _ = f.do(t, http.MethodPost, "/wishlist", `{"user":{"email":"ghost@x.com"},"movie":{"_id":"m1"}}`, "")
	if code != http.StatusNotFound {
		t.Fatalf("wishlist unknown user: expected 404, got %d", code)
	}
	code, _ = f.do(t, http.MethodPost, "/wishlist", `{"movie":{"_id":"m1"}}`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("wishlist without user: expected 400, got %d", code)
	}

	stored, _ := f.users.FindByEmail(context.Background(), "u@x.com")
	if len(stored.Wishlist) != 1 {
		t.Fatalf("expected a single wishlist entry, got %d", len(stored.Wishlist))
	}
}

func TestRouter_DemotedAdminLosesAccess(t *testing.T) {
	f := newFixture(t)
	f.users.users["a@x.com"] = &domain.User{ID: fmt.Sprintf("%024x", 1), Email: "a@x.com", Role: domain.RoleAdmin}
	f.users.users["b@x.com"] = &domain.User{ID: fmt.Sprintf("%024x", 2), Email: "b@x.com", Role: domain.RoleUser}
	token := f.token(t, "a@x.com")

	code, _ := f.do(t, http.MethodPatch, "/users/admin/"+fmt.Sprintf("%024x", 2), "", token)
	if code != http.StatusOK {
		t.Fatalf("expected 200 while admin, got %d", code)
	}

	f.users.users["a@x.com"].Role = domain.RoleUser

	code, resp := f.do(t, http.MethodPatch, "/users/admin/"+fmt.Sprintf("%024x", 2), "", token)
	if code != http.StatusForbidden || resp["message"] != "forbidden access" {
		t.Fatalf("expected 403 after demotion, got %d %v", code, resp)
	}
}

func TestRouter_SeriesRequiresToken(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/series", "", "")
	if code != http.StatusUnauthorized || resp["message"] != "unauthorized access" || resp["error"] != true {
		t.Fatalf("expected 401 envelope, got %d %v", code, resp)
	}

	code, _ = f.do(t, http.MethodGet, "/series", "", "garbage")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}

	code, _ = f.do(t, http.MethodGet, "/series", "", f.token(t, "anyone@x.com"))
	if code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", code)
	}
}

func TestRouter_ForumViews(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/forumQueries", `{"authorEmail":"a@x.com","body":"why?"}`, "")
	if code != http.StatusCreated {
		t.Fatalf("post query: expected 201, got %d", code)
	}
	id := resp["insertedId"].(string)

	code, resp = f.do(t, http.MethodPost, "/forumQueries/"+id, `{"views":5}`, "")
	if code != http.StatusOK || resp["success"] != true {
		t.Fatalf("set views: expected success, got %d %v", code, resp)
	}

	for _, unknown := range []string{fmt.Sprintf("%024x", 404), "malformed"} {
		code, resp = f.do(t, http.MethodPost, "/forumQueries/"+unknown, `{"views":5}`, "")
		if code != http.StatusOK || resp["success"] != false {
			t.Fatalf("set views on %s: expected success false, got %d %v", unknown, code, resp)
		}
	}
}

func TestRouter_PaymentIntent(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/create-payment-intent", `{"price":19.99}`, "")
	if code != http.StatusOK || resp["clientSecret"] != "secret_1999_usd" {
		t.Fatalf("expected secret for 1999 usd, got %d %v", code, resp)
	}

	code, _ = f.do(t, http.MethodPost, "/create-payment-intent", `{"price":0}`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero price, got %d", code)
	}
}

func TestRouter_Banner(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "cyco-engine" {
		t.Fatalf("unexpected banner %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_CatalogAndUserReads(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/movies", `{"title":"Heat","year":1995}`, "")
	if code != http.StatusCreated || resp["message"] != "Movie saved successfully" {
		t.Fatalf("create movie: expected 201, got %d %v", code, resp)
	}

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))
	var movies []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil || len(movies) != 1 || movies[0]["title"] != "Heat" {
		t.Fatalf("list movies: unexpected %d %s", rec.Code, rec.Body.String())
	}

	code, resp = f.do(t, http.MethodGet, "/user/nobody@x.com", "", "")
	if code != http.StatusNotFound || resp["message"] != "User not found" {
		t.Fatalf("get unknown user: expected 404, got %d %v", code, resp)
	}

	f.do(t, http.MethodPost, "/register", `{"username":"u","email":"u@x.com","password":"pw"}`, "")
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil || len(users) != 1 || users[0]["role"] != "user" {
		t.Fatalf("list users: unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_WishlistKeepsCatalogDocument(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/register", `{"username":"u","email":"u@x.com","password":"pw"}`, "")

	movie := `{"_id":"m2","name":"Heat","year":"1995","rating":8.3,"image":"x.jpg"}`
	code, resp := f.do(t, http.MethodPost, "/wishlist", `{"user":{"email":"u@x.com"},"movie":`+movie+`}`, "")
	if code != http.StatusOK {
		t.Fatalf("wishlist add: expected 200, got %d %v", code, resp)
	}

	code, resp = f.do(t, http.MethodGet, "/user/u@x.com", "", "")
	if code != http.StatusOK {
		t.Fatalf("get user: expected 200, got %d", code)
	}
	wishlist, _ := resp["wishlist"].([]any)
	if len(wishlist) != 1 {
		t.Fatalf("expected one wishlist entry, got %v", resp["wishlist"])
	}

	var want map[string]any
	_ = json.Unmarshal([]byte(movie), &want)
	got := wishlist[0].(map[string]any)
	for k, v := range want {
		if got[k] != v {
			t.Errorf("wishlist field %s: want %v, got %v", k, v, got[k])
		}
	}
}
