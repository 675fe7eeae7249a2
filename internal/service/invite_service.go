package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
	"github.com/lexflowhq/lexflow-api/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// InviteStore is the persistence contract for invite records.
type InviteStore interface {
	CreateInvite(ctx context.Context, inv *domain.Invite) (*domain.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*domain.Invite, error)
	FindPendingInvite(ctx context.Context, officeID, email string) (*domain.Invite, error)
	MarkInviteAccepted(ctx context.Context, id string, at time.Time) error
}

// AccountStore is the persistence contract for account + profile creation.
type AccountStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	CreateProfile(ctx context.Context, p *domain.Profile) error
	DeleteUser(ctx context.Context, id string) error
}

// InviteService issues and consumes onboarding invites.
type InviteService struct {
	invites  InviteStore
	accounts AccountStore
	mailer   port.InviteMailer

	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

// NewInviteService creates the invite service.
func NewInviteService(invites InviteStore, accounts AccountStore, mailer port.InviteMailer, cfg *config.Config) *InviteService {
	return &InviteService{
		invites:  invites,
		accounts: accounts,
		mailer:   mailer,
		ttl:      time.Duration(cfg.InviteTTLHours) * time.Hour,
		baseURL:  cfg.InviteBaseURL,
		now:      time.Now,
	}
}

// canInvite encodes the role gate: admins invite any role, lawyers only
// support staff, everyone else nothing.
func canInvite(inviterRole, targetRole string) bool {
	switch inviterRole {
	case domain.RoleAdmin:
		return true
	case domain.RoleLawyer:
		return targetRole == domain.RoleAssistant || targetRole == domain.RoleIntern
	}
	return false
}

// Send issues an invite for email with the given role, scoped to the
// inviter's office. A still-pending invite for the same (office, email)
// pair is returned as-is instead of creating a duplicate.
func (s *InviteService) Send(ctx context.Context, inviter *domain.UserContext, email, role string) (*domain.Invite, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if !canInvite(inviter.Role, role) {
		return nil, fmt.Errorf("%w: role %s may not invite %s", port.ErrPermissionDenied, inviter.Role, role)
	}

	existing, err := s.invites.FindPendingInvite(ctx, inviter.OfficeID, email)
	if err == nil {
		slog.Info("returning existing pending invite", "email", email, "office_id", inviter.OfficeID)
		return existing, nil
	}
	if !errors.Is(err, port.ErrNotFound) {
		return nil, fmt.Errorf("check pending invite: %w", err)
	}

	invite, err := s.invites.CreateInvite(ctx, &domain.Invite{
		Token:     uuid.NewString(),
		Email:     email,
		Role:      role,
		OfficeID:  inviter.OfficeID,
		InvitedBy: inviter.UserID,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	acceptURL := s.baseURL + "?token=" + invite.Token
	if err := s.mailer.SendInvite(ctx, invite, acceptURL); err != nil {
		// Delivery failure does not invalidate the invite; it can be resent.
		slog.Error("invite delivery failed", "email", email, "error", err)
	}

	slog.Info("invite issued", "email", email, "role", role, "invited_by", inviter.UserID)
	return invite, nil
}

// Accept consumes an invite token: validates it, creates the account and
// linked profile, and marks the invite accepted last. If the profile write
// fails, the freshly created account is deleted so no orphan remains.
func (s *InviteService) Accept(ctx context.Context, token, password, fullName string) (*domain.User, error) {
	invite, err := s.invites.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if now.After(invite.ExpiresAt) {
		return nil, port.ErrInviteExpired
	}
	if invite.AcceptedAt != nil {
		return nil, port.ErrInviteAlreadyAccepted
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.accounts.CreateUser(ctx, &domain.User{
		Email:        invite.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create account: %v", port.ErrDatabase, err)
	}

	profile := &domain.Profile{
		UserID:   user.ID,
		FullName: fullName,
		Role:     invite.Role,
		OfficeID: invite.OfficeID,
	}
	if err := s.accounts.CreateProfile(ctx, profile); err != nil {
		// Compensate: remove the account so the invite stays usable.
		if delErr := s.accounts.DeleteUser(ctx, user.ID); delErr != nil {
			slog.Error("compensating account delete failed", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: create profile: %v", port.ErrDatabase, err)
	}

	if err := s.invites.MarkInviteAccepted(ctx, invite.ID, now); err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Role = invite.Role
	user.OfficeID = invite.OfficeID

	slog.Info("invite accepted", "email", invite.Email, "user_id", user.ID, "role", invite.Role)
	return user, nil
}
