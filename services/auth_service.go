package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"fmt"
)

type IAuthService interface {
	Login(req auth.LoginRequest) (Token, error)
	Register(req auth.RegisterRequest) (Token, error)
}

type TokenIssuer interface {
	GenerateToken(userID domain.UserID, roles []string) (string, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         TokenIssuer
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, tokens TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(req auth.RegisterRequest) (Token, error) {
	// 1. Validate business rules (email format, phone, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(req); err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrValidation, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.userRepository.CreateUser(repositories.User{
		User: domain.User{
			Name:        req.Name,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
		},
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return "", err // Will propagate ErrUserAlreadyExists if email or phone is taken
	}

	// 4. Generate the initial session token
	token, err := s.tokens.GenerateToken(userID, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(req auth.LoginRequest) (Token, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := s.tokens.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
