package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository. AddToWishlist mirrors the conditional Mongo
// update: membership check and write happen under one lock.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.User
	nextID    int
	addCalls  int
	findErr   error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Wishlist = append([]domain.MovieRef(nil), u.Wishlist...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("id-%d", r.nextID)
	r.byEmail[copy.Email] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) SetRole(_ context.Context, id, role string) (ports.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return ports.UpdateOutcome{}, r.updateErr
	}
	if id == "not-hex" {
		return ports.UpdateOutcome{}, domain.ErrInvalidID
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			if u.Role == role {
				return ports.UpdateOutcome{MatchedCount: 1}, nil
			}
			u.Role = role
			return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return ports.UpdateOutcome{}, nil
}

func (r *stubUserRepo) AddToWishlist(_ context.Context, email string, movie domain.MovieRef) (ports.UpdateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCalls++
	if r.updateErr != nil {
		return ports.UpdateOutcome{}, r.updateErr
	}
	u, ok := r.byEmail[email]
	if !ok || u.HasInWishlist(movie.ID) {
		return ports.UpdateOutcome{}, nil
	}
	u.Wishlist = append(u.Wishlist, movie)
	return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
}

// seed stores a user directly, bypassing Register.
func (r *stubUserRepo) seed(id, email, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[email] = &domain.User{ID: id, Email: email, Role: role, Wishlist: []domain.MovieRef{}}
}

// ---------------------------------------------------------------------------
// Forum
// ---------------------------------------------------------------------------

type stubForumRepo struct {
	queries map[string]*domain.ForumQuery
	created []*domain.ForumQuery
	err     error
}

func newStubForumRepo() *stubForumRepo {
	return &stubForumRepo{queries: make(map[string]*domain.ForumQuery)}
}

func (r *stubForumRepo) Create(_ context.Context, q *domain.ForumQuery) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	clone := *q
	clone.ID = fmt.Sprintf("q%d", len(r.created)+1)
	r.queries[clone.ID] = &clone
	r.created = append(r.created, &clone)
	return clone.ID, nil
}

func (r *stubForumRepo) List(_ context.Context) ([]*domain.ForumQuery, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.created, nil
}

func (r *stubForumRepo) SetViews(_ context.Context, id string, views int64) (ports.UpdateOutcome, error) {
	if r.err != nil {
		return ports.UpdateOutcome{}, r.err
	}
	if id == "not-hex" {
		return ports.UpdateOutcome{}, domain.ErrInvalidID
	}
	q, ok := r.queries[id]
	if !ok {
		return ports.UpdateOutcome{}, nil
	}
	if q.Views == views {
		return ports.UpdateOutcome{MatchedCount: 1}, nil
	}
	q.Views = views
	return ports.UpdateOutcome{MatchedCount: 1, ModifiedCount: 1}, nil
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type stubProcessor struct {
	calls []ports.PaymentIntentRequest
	err   error
}

func (p *stubProcessor) CreatePaymentIntent(_ context.Context, req ports.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	return &domain.PaymentIntent{
		ClientSecret: fmt.Sprintf("pi_secret_%d", len(p.calls)),
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
	}, nil
}

type stubPaymentRepo struct {
	inserted []*domain.PaymentRecord
}

func (r *stubPaymentRepo) Insert(_ context.Context, rec *domain.PaymentRecord) (string, error) {
	r.inserted = append(r.inserted, rec)
	return "pay-1", nil
}

type stubIntentCache struct {
	receipts  map[string]domain.IntentReceipt
	lookupErr error
}

func newStubIntentCache() *stubIntentCache {
	return &stubIntentCache{receipts: make(map[string]domain.IntentReceipt)}
}

func (c *stubIntentCache) Lookup(_ context.Context, key string) (domain.IntentReceipt, bool, error) {
	if c.lookupErr != nil {
		return domain.IntentReceipt{}, false, c.lookupErr
	}
	r, ok := c.receipts[key]
	return r, ok, nil
}

func (c *stubIntentCache) Remember(_ context.Context, key string, receipt domain.IntentReceipt) error {
	if _, ok := c.receipts[key]; !ok {
		c.receipts[key] = receipt
	}
	return nil
}
