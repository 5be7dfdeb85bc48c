package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// IdentityProvisioner creates a login credential for an incoming or
// returning administrator. The rollover and restore engines call it but do
// not own identity semantics.
type IdentityProvisioner interface {
	CreateCredential(ctx context.Context, email, password string) error
}

// CredentialProvisioner stores bcrypt password hashes in the credentials
// collection. It owns email grammar validation for the whole workspace.
type CredentialProvisioner struct {
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCredentialProvisioner constructs the provisioner.
func NewCredentialProvisioner(store documentStore, validate *validator.Validate, logger *zap.Logger) *CredentialProvisioner {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialProvisioner{store: store, validator: validate, logger: logger}
}

// CreateCredential issues a login secret for the email. An email that
// already holds a credential fails with an identity conflict so the caller
// can pick a different address.
func (p *CredentialProvisioner) CreateCredential(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := p.validator.Var(email, "required,email"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid credential email")
	}
	if password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "credential password must not be empty")
	}

	if _, err := p.store.Get(ctx, models.CollectionCredentials, email); err == nil {
		return appErrors.Clone(appErrors.ErrIdentityConflict, "a credential already exists for "+email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrProvisioner.Code, appErrors.ErrProvisioner.Status, "failed to check existing credential")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrProvisioner.Code, appErrors.ErrProvisioner.Status, "failed to hash password")
	}

	credential := models.Credential{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	doc, err := repository.EncodeDoc(credential)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrProvisioner.Code, appErrors.ErrProvisioner.Status, "failed to encode credential")
	}
	if err := p.store.SetOne(ctx, models.CollectionCredentials, email, doc.Data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrProvisioner.Code, appErrors.ErrProvisioner.Status, "failed to store credential")
	}

	p.logger.Info("credential provisioned", zap.String("email", email))
	return nil
}
