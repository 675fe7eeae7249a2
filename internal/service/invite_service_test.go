package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
	"github.com/lexflowhq/lexflow-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeInviteStore struct {
	invites []*domain.Invite
	pending *domain.Invite
	created int
}

func (f *fakeInviteStore) CreateInvite(_ context.Context, inv *domain.Invite) (*domain.Invite, error) {
	f.created++
	cp := *inv
	cp.ID = uuid.NewString()
	f.invites = append(f.invites, &cp)
	return &cp, nil
}

func (f *fakeInviteStore) GetInviteByToken(_ context.Context, token string) (*domain.Invite, error) {
	for _, inv := range f.invites {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, port.ErrInviteInvalid
}

func (f *fakeInviteStore) FindPendingInvite(_ context.Context, officeID, email string) (*domain.Invite, error) {
	if f.pending != nil && f.pending.OfficeID == officeID && f.pending.Email == email {
		return f.pending, nil
	}
	return nil, port.ErrNotFound
}

func (f *fakeInviteStore) MarkInviteAccepted(_ context.Context, id string, at time.Time) error {
	for _, inv := range f.invites {
		if inv.ID == id {
			if inv.AcceptedAt != nil {
				return port.ErrInviteAlreadyAccepted
			}
			t := at
			inv.AcceptedAt = &t
			return nil
		}
	}
	return port.ErrInviteInvalid
}

type fakeAccountStore struct {
	users      map[string]*domain.User
	profiles   map[string]*domain.Profile
	profileErr error
	deleted    []string
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.Profile),
	}
}

func (f *fakeAccountStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	cp := *u
	cp.ID = uuid.NewString()
	f.users[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeAccountStore) CreateProfile(_ context.Context, p *domain.Profile) error {
	if f.profileErr != nil {
		return f.profileErr
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeAccountStore) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.users, id)
	return nil
}

type fakeMailer struct {
	sent int
}

func (f *fakeMailer) SendInvite(_ context.Context, _ *domain.Invite, _ string) error {
	f.sent++
	return nil
}

func newTestInviteService(invites *fakeInviteStore, accounts *fakeAccountStore, mailer *fakeMailer, now time.Time) *InviteService {
	svc := NewInviteService(invites, accounts, mailer, &config.Config{
		InviteTTLHours: 72,
		InviteBaseURL:  "http://localhost:3000/invite",
	})
	svc.now = func() time.Time { return now }
	return svc
}

func adminCtx() *domain.UserContext {
	return &domain.UserContext{UserID: "admin-1", Role: domain.RoleAdmin, OfficeID: "office-1"}
}

func lawyerCtx() *domain.UserContext {
	return &domain.UserContext{UserID: "lawyer-1", Role: domain.RoleLawyer, OfficeID: "office-1"}
}

func TestSendRoleGate(t *testing.T) {
	tests := []struct {
		name       string
		inviter    *domain.UserContext
		targetRole string
		wantErr    error
	}{
		{"admin invites lawyer", adminCtx(), domain.RoleLawyer, nil},
		{"admin invites admin", adminCtx(), domain.RoleAdmin, nil},
		{"lawyer invites intern", lawyerCtx(), domain.RoleIntern, nil},
		{"lawyer invites assistant", lawyerCtx(), domain.RoleAssistant, nil},
		{"lawyer invites admin", lawyerCtx(), domain.RoleAdmin, port.ErrPermissionDenied},
		{"lawyer invites lawyer", lawyerCtx(), domain.RoleLawyer, port.ErrPermissionDenied},
		{"assistant invites intern", &domain.UserContext{UserID: "a-1", Role: domain.RoleAssistant, OfficeID: "office-1"}, domain.RoleIntern, port.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestInviteService(&fakeInviteStore{}, newFakeAccountStore(), &fakeMailer{}, time.Now())

			invite, err := svc.Send(context.Background(), tt.inviter, "new@firm.example", tt.targetRole)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.targetRole, invite.Role)
			assert.Equal(t, tt.inviter.OfficeID, invite.OfficeID)
			assert.NotEmpty(t, invite.Token)
		})
	}
}

func TestSendUnknownRole(t *testing.T) {
	svc := newTestInviteService(&fakeInviteStore{}, newFakeAccountStore(), &fakeMailer{}, time.Now())

	_, err := svc.Send(context.Background(), adminCtx(), "new@firm.example", "partner")
	assert.Error(t, err)
}

func TestSendDuplicateReturnsExisting(t *testing.T) {
	now := time.Now()
	existing := &domain.Invite{
		ID:        "inv-1",
		Token:     "existing-token",
		Email:     "new@firm.example",
		Role:      domain.RoleIntern,
		OfficeID:  "office-1",
		ExpiresAt: now.Add(24 * time.Hour),
	}
	invites := &fakeInviteStore{pending: existing}
	mailer := &fakeMailer{}
	svc := newTestInviteService(invites, newFakeAccountStore(), mailer, now)

	invite, err := svc.Send(context.Background(), adminCtx(), "new@firm.example", domain.RoleIntern)
	require.NoError(t, err)

	assert.Equal(t, "existing-token", invite.Token)
	assert.Equal(t, 0, invites.created, "no second record for a pending invite")
	assert.Equal(t, 0, mailer.sent)
}

func TestSendMailsInvite(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestInviteService(&fakeInviteStore{}, newFakeAccountStore(), mailer, time.Now())

	_, err := svc.Send(context.Background(), adminCtx(), "new@firm.example", domain.RoleIntern)
	require.NoError(t, err)
	assert.Equal(t, 1, mailer.sent)
}

func seedInvite(invites *fakeInviteStore, expiresAt time.Time) *domain.Invite {
	inv := &domain.Invite{
		ID:        "inv-1",
		Token:     "tok-1",
		Email:     "new@firm.example",
		Role:      domain.RoleAssistant,
		OfficeID:  "office-1",
		InvitedBy: "admin-1",
		ExpiresAt: expiresAt,
	}
	invites.invites = append(invites.invites, inv)
	return inv
}

func TestAcceptCreatesAccountAndProfile(t *testing.T) {
	now := time.Now()
	invites := &fakeInviteStore{}
	seedInvite(invites, now.Add(24*time.Hour))
	accounts := newFakeAccountStore()
	svc := newTestInviteService(invites, accounts, &fakeMailer{}, now)

	user, err := svc.Accept(context.Background(), "tok-1", "s3cret", "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, "new@firm.example", user.Email)
	assert.Equal(t, domain.RoleAssistant, user.Role)
	assert.Equal(t, "office-1", user.OfficeID)

	stored := accounts.users[user.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))

	profile := accounts.profiles[user.ID]
	require.NotNil(t, profile)
	assert.Equal(t, "Jane Doe", profile.FullName)

	require.NotNil(t, invites.invites[0].AcceptedAt)
}

func TestAcceptNotIdempotent(t *testing.T) {
	now := time.Now()
	invites := &fakeInviteStore{}
	seedInvite(invites, now.Add(24*time.Hour))
	svc := newTestInviteService(invites, newFakeAccountStore(), &fakeMailer{}, now)

	_, err := svc.Accept(context.Background(), "tok-1", "s3cret", "Jane Doe")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), "tok-1", "s3cret", "Jane Doe")
	assert.ErrorIs(t, err, port.ErrInviteAlreadyAccepted)
}

func TestAcceptExpired(t *testing.T) {
	now := time.Now()
	invites := &fakeInviteStore{}
	seedInvite(invites, now.Add(-time.Hour))
	svc := newTestInviteService(invites, newFakeAccountStore(), &fakeMailer{}, now)

	_, err := svc.Accept(context.Background(), "tok-1", "s3cret", "Jane Doe")
	assert.ErrorIs(t, err, port.ErrInviteExpired)
}

func TestAcceptUnknownToken(t *testing.T) {
	svc := newTestInviteService(&fakeInviteStore{}, newFakeAccountStore(), &fakeMailer{}, time.Now())

	_, err := svc.Accept(context.Background(), "nope", "s3cret", "Jane Doe")
	assert.ErrorIs(t, err, port.ErrInviteInvalid)
}

func TestAcceptCompensatesOnProfileFailure(t *testing.T) {
	now := time.Now()
	invites := &fakeInviteStore{}
	seedInvite(invites, now.Add(24*time.Hour))
	accounts := newFakeAccountStore()
	accounts.profileErr = errors.New("profiles table unavailable")
	svc := newTestInviteService(invites, accounts, &fakeMailer{}, now)

	_, err := svc.Accept(context.Background(), "tok-1", "s3cret", "Jane Doe")
	require.ErrorIs(t, err, port.ErrDatabase)

	assert.Len(t, accounts.deleted, 1, "created account must be removed")
	assert.Empty(t, accounts.users, "no orphan account remains")
	assert.Nil(t, invites.invites[0].AcceptedAt, "invite stays usable")
}
