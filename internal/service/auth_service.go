package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"task-manager-api/internal/model"
	"task-manager-api/internal/security"
	"task-manager-api/internal/token"
)

// CredentialStore is the slice of the user repository the authenticator
// needs: identifier lookup and the atomic legacy-to-hashed credential swap.
type CredentialStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	MigrateCredential(ctx context.Context, userID string, hash []byte, salt []byte) error
}

type AuthService struct {
	store  CredentialStore
	issuer *token.Issuer
	audit  *AuditService
}

func NewAuthService(store CredentialStore, issuer *token.Issuer, audit *AuditService) *AuthService {
	return &AuthService{store: store, issuer: issuer, audit: audit}
}

// Login authenticates a user by email or username and returns a signed
// session token.
//
// The stored credential decides the path:
//   - legacy plaintext: exact match, then the password is hashed and the
//     plaintext replaced in a single atomic update before the login succeeds;
//   - modern hash+salt: PBKDF2 verification;
//   - neither: the account is reset-pending and gets a distinct error.
//
// An unknown identifier and a wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, identifier string, password string) (model.LoginResult, error) {
	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.audit.Record(ctx, ActionLogin, "", identifier, StatusFailure, "unknown identifier")
			return model.LoginResult{}, model.ErrInvalidCredentials
		}
		return model.LoginResult{}, err
	}

	switch user.Credential.Kind() {
	case model.CredentialLegacy:
		if subtle.ConstantTimeCompare([]byte(user.Credential.Legacy), []byte(password)) != 1 {
			s.audit.Record(ctx, ActionLogin, user.ID, user.Username, StatusFailure, "wrong password (legacy)")
			return model.LoginResult{}, model.ErrInvalidCredentials
		}
		if err := s.migrateCredential(ctx, user, password); err != nil {
			// Fail closed: the caller sees an ordinary authentication
			// failure and storage keeps the untouched legacy record.
			return model.LoginResult{}, model.ErrInvalidCredentials
		}

	case model.CredentialModern:
		if !security.VerifyPassword(password, user.Credential.Hash, user.Credential.Salt) {
			s.audit.Record(ctx, ActionLogin, user.ID, user.Username, StatusFailure, "wrong password")
			return model.LoginResult{}, model.ErrInvalidCredentials
		}

	case model.CredentialUnset:
		s.audit.Record(ctx, ActionLogin, user.ID, user.Username, StatusFailure, "no credential on record")
		return model.LoginResult{}, model.ErrPasswordResetRequired
	}

	signed, err := s.issuer.Issue(user)
	if err != nil {
		// The key length is validated at startup, so this is a process
		// invariant violation, not a client problem.
		slog.Error("token issuance failed", "user_id", user.ID, "error", err)
		return model.LoginResult{}, err
	}

	s.audit.Record(ctx, ActionLogin, user.ID, user.Username, StatusSuccess, "")
	return model.LoginResult{Token: signed, User: user.Public()}, nil
}

func (s *AuthService) migrateCredential(ctx context.Context, user model.User, password string) error {
	hash, salt, err := security.HashPassword(password)
	if err != nil {
		slog.Error("credential hashing failed during migration", "user_id", user.ID, "error", err)
		return err
	}

	if err := s.store.MigrateCredential(ctx, user.ID, hash, salt); err != nil {
		slog.Error("credential migration write failed", "user_id", user.ID, "error", err)
		s.audit.Record(ctx, ActionCredentialMigrated, user.ID, user.Username, StatusFailure, err.Error())
		return err
	}

	s.audit.Record(ctx, ActionCredentialMigrated, user.ID, user.Username, StatusSuccess, "")
	slog.Info("legacy credential migrated", "user_id", user.ID)
	return nil
}
