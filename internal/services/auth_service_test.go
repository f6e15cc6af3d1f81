package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"catalogue/internal/models"
	"catalogue/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func hashedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Name:     "Test User",
		Password: string(hash),
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := hashedUser(t, "naim", "password123")
	mockRepo.On("GetByUsername", mock.Anything, "naim").Return(user, nil).Once()

	loggedIn, token, err := service.Login(context.Background(), "naim", "password123")

	assert.NoError(t, err)
	assert.Equal(t, user, loggedIn)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "naim", claims["username"])
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := hashedUser(t, "naim", "password123")
	mockRepo.On("GetByUsername", mock.Anything, "naim").Return(user, nil).Once()

	_, _, err := service.Login(context.Background(), "naim", "wrong")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, "test_jwt_secret")

	mockRepo.On("GetByUsername", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("user ghost: not found")).Once()

	_, _, err := service.Login(context.Background(), "ghost", "whatever")
	assert.Error(t, err)
	// The error must not reveal whether the username exists.
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, "test_jwt_secret")

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := services.NewAuthService(mockRepo, "different_secret")
	user := hashedUser(t, "naim", "password123")
	mockRepo.On("GetByUsername", mock.Anything, "naim").Return(user, nil).Once()
	_, token, err := other.Login(context.Background(), "naim", "password123")
	assert.NoError(t, err)

	// A token signed with a different secret must be rejected.
	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := hashedUser(t, "afia", "s3cret")
	mockRepo.On("GetByUsername", mock.Anything, "afia").Return(user, nil).Twice()

	verified, err := service.VerifyCredentials(context.Background(), "afia", "s3cret")
	assert.NoError(t, err)
	assert.Equal(t, "afia", verified.Username)

	_, err = service.VerifyCredentials(context.Background(), "afia", "nope")
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}
