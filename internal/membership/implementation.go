// internal/membership/implementation.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"biblioteka/internal/storage"
)

var (
	// ErrInvalidMember is returned when a registration is missing a name or
	// a plausible email.
	ErrInvalidMember = errors.New("name and email are required")

	// ErrRateLimited is returned when registrations arrive faster than the
	// limiter allows.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// service implements the Service interface.
type service struct {
	store   storage.MemberStore
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewService creates a new membership service instance. Registration is
// rate limited to keep a misbehaving caller from flooding the member table.
func NewService(store storage.MemberStore, limiter *rate.Limiter, log *zap.Logger) Service {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 10)
	}
	return &service{store: store, limiter: limiter, log: log}
}

// RegisterMember creates a new member. Emails are unique across all members.
func (s *service) RegisterMember(ctx context.Context, name, email string) (*Member, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidMember
	}

	member := Member{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.log.Info("member registered",
		zap.Stringer("member_id", member.ID),
		zap.String("email", member.Email))

	return &member, nil
}

// GetMember retrieves a member by their ID.
func (s *service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &member, nil
}

// ListMembers returns all registered members.
func (s *service) ListMembers(ctx context.Context) ([]Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
