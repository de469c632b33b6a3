package services

import (
	"chat-hub/domain"
	"chat-hub/repositories"
)

type IUserService interface {
	GetProfile(id domain.UserID) (domain.User, error)
}

type UserService struct {
	userRepository repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) IUserService {
	return &UserService{userRepository: repo}
}

// GetProfile never exposes credentials, only the public part of the account.
func (s *UserService) GetProfile(id domain.UserID) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(id)
	if err != nil {
		return domain.User{}, err
	}
	return user.User, nil
}
