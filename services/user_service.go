package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"loja-backend/dtos"
	"loja-backend/models"
	"loja-backend/store"
	"loja-backend/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TokenIssuer signs an access token for a user.
type TokenIssuer func(userID, email, role string) (string, error)

type UserServiceDeps struct {
	Users  store.UserStore
	Logger *zap.Logger
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// IssueToken defaults to utils.GenerateToken.
	IssueToken TokenIssuer
}

type UserService struct {
	users      store.UserStore
	logger     *zap.Logger
	bcryptCost int
	issueToken TokenIssuer
}

func NewUserService(deps UserServiceDeps) *UserService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	if deps.IssueToken == nil {
		deps.IssueToken = utils.GenerateToken
	}
	return &UserService{
		users:      deps.Users,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
		issueToken: deps.IssueToken,
	}
}

func (s *UserService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, models.RoleCustomer)
}

// EnsureAdmin creates an admin account with the given credentials unless the
// email is already registered. created reports whether a user was inserted.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	_, err = s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	_, err = s.create(ctx, dtos.RegisterRequest{
		Nome:  "Administrador",
		Idade: 18,
		Email: email,
		Senha: password,
	}, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserService) create(ctx context.Context, req dtos.RegisterRequest, role string) (*models.User, error) {
	name := strings.TrimSpace(req.Nome)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Senha == "" || req.Idade == 0 {
		return nil, fmt.Errorf("%w: nome, idade, email e senha são obrigatórios", ErrInvalidInput)
	}
	if req.Idade < 0 {
		return nil, fmt.Errorf("%w: idade deve ser um número positivo", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: email inválido", ErrInvalidInput)
	}
	if len(req.Senha) < minPasswordLength {
		return nil, fmt.Errorf("%w: senha deve ter pelo menos %d caracteres", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Name:         name,
		Age:          req.Idade,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("insert user failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns the user with a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email e senha são obrigatórios", ErrInvalidInput)
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if u.PasswordHash == "" {
		s.logger.Error("user without password hash", zap.String("user_id", u.ID))
		return nil, "", ErrMissingPasswordHash
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
