package service

import (
	"errors"

	"xenarc-chat-demo/backend/internal/models"
	"xenarc-chat-demo/backend/internal/store"
	"xenarc-chat-demo/backend/pkg/jwt"
	"xenarc-chat-demo/backend/pkg/logger"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// usersKey is the persistence key for the credential table, a map of
// email to credential record.
const usersKey = "users"

// UserService validates email/password pairs against the locally
// persisted user table and issues signed session tokens.
type UserService struct {
	store      store.Store
	jwtService *jwt.Service
	logger     *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(st store.Store, jwtService *jwt.Service, log *logger.Logger) *UserService {
	return &UserService{
		store:      st,
		jwtService: jwtService,
		logger:     log,
	}
}

// Signup registers a new account and returns the identity with a
// session token. The password is stored as a bcrypt hash.
func (s *UserService) Signup(req *models.SignupRequest) (*models.User, string, error) {
	users, err := s.loadUsers()
	if err != nil {
		return nil, "", err
	}

	if _, exists := users[req.Email]; exists {
		return nil, "", ErrUserAlreadyExists
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.NewUser(req.Email, req.Name)
	users[req.Email] = models.Credential{
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    user.CreatedAt,
	}

	if err := s.store.Save(usersKey, users); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "email", user.Email)
	return &user, token, nil
}

// Login authenticates a user and returns the identity with a session
// token.
func (s *UserService) Login(req *models.LoginRequest) (*models.User, string, error) {
	valid, name, err := s.Validate(req.Email, req.Password)
	if err != nil {
		return nil, "", err
	}
	if !valid {
		return nil, "", ErrInvalidCredentials
	}

	user := models.NewUser(req.Email, name)
	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Validate checks an email/password pair against the stored table and
// returns the account name on success.
func (s *UserService) Validate(email, password string) (bool, string, error) {
	users, err := s.loadUsers()
	if err != nil {
		return false, "", err
	}

	cred, exists := users[email]
	if !exists {
		return false, "", nil
	}
	if !models.CheckPasswordHash(password, cred.PasswordHash) {
		return false, "", nil
	}
	return true, cred.Name, nil
}

func (s *UserService) loadUsers() (map[string]models.Credential, error) {
	users := make(map[string]models.Credential)
	if _, err := s.store.Load(usersKey, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = make(map[string]models.Credential)
	}
	return users, nil
}
