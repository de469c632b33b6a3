package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func validRegisterRequest(email string) auth.RegisterRequest {
	return auth.RegisterRequest{
		Name:        "Alice",
		Email:       email,
		PhoneNumber: "+33612345678",
		Password:    "ComplexPass123!",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		request := validRegisterRequest("test@example.com")

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(user repositories.User) (domain.UserID, error) {
				req.Equal("test@example.com", user.Email)
				req.Equal("+33612345678", user.PhoneNumber)
				req.NotEqual(request.Password, user.PasswordHash)
				return "user-uuid", nil
			}).
			Times(1)

		token, err := svc.Register(request)

		req.NoError(err)
		req.NotEmpty(token)
		userID, err := tokens.Verify(token.String())
		req.NoError(err)
		req.Equal(domain.UserID("user-uuid"), userID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		request := validRegisterRequest("test@example.com")
		request.Password = "simple"

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any()).Times(0)

		token, err := svc.Register(request)

		req.ErrorIs(err, errors.ErrValidation)
		req.Equal(errors.CodeValidation, errors.Code(err))
		req.Empty(token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			Return(domain.UserID(""), errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(validRegisterRequest("duplicate@example.com"))

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"
		password := "Secret123456!"

		hashedPassword, err := auth.HashPassword(password)
		req.NoError(err)
		storedUser := repositories.User{
			User:         domain.User{ID: "uuid-123", Email: email},
			PasswordHash: hashedPassword,
			Roles:        []string{"user"},
		}

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login(auth.LoginRequest{Email: email, Password: password})

		req.NoError(err)
		req.NotEmpty(token)

		claims, err := tokens.ValidateToken(token.String())
		req.NoError(err)
		req.Equal(string(storedUser.ID), claims.UserID)
		req.Equal([]string{"user"}, claims.Roles)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"

		hashedPassword, err := auth.HashPassword("CorrectPassword123!")
		req.NoError(err)
		storedUser := repositories.User{
			User:         domain.User{ID: "uuid-123", Email: email},
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(storedUser, nil).
			Times(1)

		_, err = svc.Login(auth.LoginRequest{Email: email, Password: "WrongPassword123!"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByEmail("unknown@example.com").
			Return(repositories.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := svc.Login(auth.LoginRequest{Email: "unknown@example.com", Password: "anyPassword"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestUserService_GetProfile_Hides_Credentials(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	lastSeen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mockRepo.EXPECT().
		GetUserByID(domain.UserID("alice")).
		Return(repositories.User{
			User:         domain.User{ID: "alice", Name: "Alice", LastSeen: lastSeen},
			PasswordHash: "$argon2id$secret",
		}, nil)

	profile, err := NewUserService(mockRepo).GetProfile("alice")

	req.NoError(err)
	req.Equal(domain.User{ID: "alice", Name: "Alice", LastSeen: lastSeen}, profile)
}
