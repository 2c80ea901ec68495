package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/config"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/logging"
)

// Service verifies credentials, issues session tokens and manages accounts.
type Service struct {
	accounts AccountRepository
	logger   *logging.Logger
	secret   []byte
	tokenTTL time.Duration

	seedAdminUser     string
	seedAdminPassword string
}

// NewService wires the auth service from configuration.
func NewService(accounts AccountRepository, logger *logging.Logger, cfg config.AuthConfig) (*Service, error) {
	if accounts == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.new", "account repository is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.new", "logger is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New(errors.KindConfig, "auth.new", "jwt secret is required")
	}

	return &Service{
		accounts:          accounts,
		logger:            logger,
		secret:            []byte(cfg.JWTSecret),
		tokenTTL:          cfg.TokenTTL.Std(),
		seedAdminUser:     cfg.SeedAdminUser,
		seedAdminPassword: cfg.SeedAdminPassword,
	}, nil
}

// Register creates a new account. Username and email conflicts are detected
// case-insensitively before the insert; concurrent duplicate registrations
// are not serialized.
func (s *Service) Register(ctx context.Context, username, email, password, role string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New(errors.KindDomain, "auth.register", "username and password are required")
	}

	if role == "" {
		role = models.RoleOperator
	}
	if role != models.RoleAdmin && role != models.RoleOperator {
		return nil, errors.New(errors.KindDomain, "auth.register", "role must be admin or operator")
	}

	existing, err := s.accounts.FindConflicting(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.KindConflict, "auth.register", "account with this name or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "auth.register", "failed to hash password", err)
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoTag("AUTH", "registered account %s (%s)", account.Username, account.Role)
	return account, nil
}

// Login authenticates and returns a signed session token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", errors.New(errors.KindAuth, "auth.login", "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", errors.New(errors.KindAuth, "auth.login", "invalid credentials")
	}

	token, err := s.issueToken(account)
	if err != nil {
		return "", err
	}

	s.logger.InfoTag("AUTH", "login: %s", account.Username)
	return token, nil
}

// List returns all accounts; password hashes never serialize.
func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	return s.accounts.List(ctx)
}

// GetByUsername returns name and email for a pre-registration existence probe.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New(errors.KindNotFound, "auth.get", "account not found")
	}
	return account, nil
}

// UpdateRequest carries mutable account fields. An empty Password keeps the
// stored hash.
type UpdateRequest struct {
	Name     string
	Password string
	Role     string
}

// Update mutates name/role and optionally rehashes the password.
func (s *Service) Update(ctx context.Context, id uint, req UpdateRequest) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New(errors.KindNotFound, "auth.update", "account not found")
	}

	if req.Name != "" {
		account.Username = req.Name
	}
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleOperator {
			return nil, errors.New(errors.KindDomain, "auth.update", "role must be admin or operator")
		}
		account.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(errors.KindDomain, "auth.update", "failed to hash password", err)
		}
		account.PasswordHash = string(hash)
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account; absent ids are a no-op.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.accounts.Delete(ctx, id)
}

// EnsureAdminAccount seeds the configured admin credentials when no admin
// account exists yet.
func (s *Service) EnsureAdminAccount(ctx context.Context) error {
	count, err := s.accounts.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if s.seedAdminUser == "" || s.seedAdminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.KindBootstrap, "auth.seed", "failed to hash seed password", err)
	}

	account := &models.Account{
		Username:     s.seedAdminUser,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return err
	}

	s.logger.WarnTag("AUTH", "seeded default admin account %q, change its password", s.seedAdminUser)
	return nil
}
