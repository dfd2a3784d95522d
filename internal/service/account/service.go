package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ccsfp/clinic-api/internal/email"
	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/store"
	"github.com/ccsfp/clinic-api/pkg/auth"
	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
	"github.com/ccsfp/clinic-api/pkg/security"
)

// Stored field names of the accounts collection.
const (
	fieldFullName = "full_name"
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldDigest   = "password_hash"
	fieldStatus   = "status"
)

// Service owns the staff-account lifecycle: Pending on registration, Active
// after approval, never back. The bootstrap admin lives outside the store.
type Service struct {
	store     store.Store
	hasher    security.PasswordHasher
	jwtSvc    auth.JWTService
	emailSvc  email.Service
	bootstrap model.BootstrapAdmin
}

func NewService(st store.Store, hasher security.PasswordHasher, jwtSvc auth.JWTService,
	emailSvc email.Service, bootstrap model.BootstrapAdmin) *Service {
	return &Service{
		store:     st,
		hasher:    hasher,
		jwtSvc:    jwtSvc,
		emailSvc:  emailSvc,
		bootstrap: bootstrap,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (uuid.UUID, error) {
	id, err := s.create(ctx, req, model.AccountStatusPending)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.emailSvc.SendRegistrationReceived(ctx, req.Email, req.FullName); err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("failed to send registration mail")
	}
	return id, nil
}

// CreateAdmin stores an account that is Active immediately, bypassing the
// approval gate.
func (s *Service) CreateAdmin(ctx context.Context, req *model.RegisterRequest) (uuid.UUID, error) {
	return s.create(ctx, req, model.AccountStatusActive)
}

func (s *Service) create(ctx context.Context, req *model.RegisterRequest, status model.AccountStatus) (uuid.UUID, error) {
	_, err := s.store.FindOne(ctx, store.CollectionAccounts, store.Filter{
		store.Eq(fieldUsername, store.Text(req.Username)),
	})
	if err == nil {
		return uuid.Nil, apperrors.Conflict("Username already exists")
	}
	if !errors.Is(err, store.ErrNoRecord) {
		return uuid.Nil, apperrors.Internal(err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}

	id, err := s.store.Insert(ctx, store.CollectionAccounts, store.Record{
		fieldFullName: store.Text(req.FullName),
		fieldUsername: store.Text(req.Username),
		fieldEmail:    store.Text(req.Email),
		fieldDigest:   store.Text(digest),
		fieldStatus:   store.Text(string(status)),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return uuid.Nil, apperrors.Conflict("Username already exists")
		}
		return uuid.Nil, apperrors.Internal(err)
	}
	return id, nil
}

// Login checks the bootstrap credential pair before touching the store; that
// account is never persisted and is always treated as admin.
func (s *Service) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	if username == s.bootstrap.Username && password == s.bootstrap.Password {
		token, err := s.jwtSvc.GenerateToken(username, model.RoleAdmin)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		return &model.LoginResult{Role: model.RoleAdmin, Token: token}, nil
	}

	rec, err := s.store.FindOne(ctx, store.CollectionAccounts, store.Filter{
		store.Eq(fieldUsername, store.Text(username)),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoRecord) {
			return nil, apperrors.InvalidCredentials("Invalid username or password")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(rec.Canonical(fieldDigest), password); err != nil {
		return nil, apperrors.InvalidCredentials("Invalid username or password")
	}

	if rec.Canonical(fieldStatus) != string(model.AccountStatusActive) {
		return nil, apperrors.NotApproved("User not approved yet")
	}

	token, err := s.jwtSvc.GenerateToken(username, model.RoleStaff)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.LoginResult{Role: model.RoleStaff, Token: token}, nil
}

// Approve flips exactly one Pending account to Active. An unknown username
// and an already-Active one are reported identically.
func (s *Service) Approve(ctx context.Context, username string) error {
	matched, err := s.store.UpdateOne(ctx, store.CollectionAccounts,
		store.Filter{
			store.Eq(fieldUsername, store.Text(username)),
			store.Eq(fieldStatus, store.Text(string(model.AccountStatusPending))),
		},
		store.Record{fieldStatus: store.Text(string(model.AccountStatusActive))},
	)
	if err != nil {
		return apperrors.Internal(err)
	}
	if matched == 0 {
		return apperrors.NotFoundMsg("User not found or already approved")
	}

	rec, err := s.store.FindOne(ctx, store.CollectionAccounts, store.Filter{
		store.Eq(fieldUsername, store.Text(username)),
	})
	if err == nil {
		if err := s.emailSvc.SendApprovalNotice(ctx, rec.Canonical(fieldEmail), rec.Canonical(fieldFullName)); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("failed to send approval mail")
		}
	}
	return nil
}

func (s *Service) ListPending(ctx context.Context) ([]model.Account, error) {
	recs, err := s.store.Find(ctx, store.CollectionAccounts, store.Filter{
		store.Eq(fieldStatus, store.Text(string(model.AccountStatusPending))),
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.Account, 0, len(recs))
	for _, rec := range recs {
		acct := accountFromRecord(rec)
		acct.ID = ""
		out = append(out, acct)
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.Account, error) {
	recs, err := s.store.Find(ctx, store.CollectionAccounts, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.Account, 0, len(recs))
	for _, rec := range recs {
		out = append(out, accountFromRecord(rec))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, username string) error {
	deleted, err := s.store.DeleteOne(ctx, store.CollectionAccounts, store.Filter{
		store.Eq(fieldUsername, store.Text(username)),
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	if deleted == 0 {
		return apperrors.NotFoundMsg(fmt.Sprintf("User '%s' not found", username))
	}
	return nil
}

// DeleteAll removes every stored account and reports the count.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteMany(ctx, store.CollectionAccounts, nil)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return deleted, nil
}

// accountFromRecord projects a stored record, dropping the password digest.
func accountFromRecord(rec store.Record) model.Account {
	return model.Account{
		ID:       rec.Canonical(store.FieldID),
		FullName: rec.Canonical(fieldFullName),
		Username: rec.Canonical(fieldUsername),
		Email:    rec.Canonical(fieldEmail),
		Status:   model.AccountStatus(rec.Canonical(fieldStatus)),
	}
}
