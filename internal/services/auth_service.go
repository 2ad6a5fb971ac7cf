package services

import (
	"fmt"

	"favshop/internal/apperrors"
	"favshop/internal/models"
	"favshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
// Tokens are stateless HS256 JWTs carrying the user id. They have no expiry
// and no revocation list: once issued, a token stays valid for as long as
// the user row exists.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a new user with a bcrypt-hashed password and returns a
// signed token for them.
func (s *AuthService) Register(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.Validation("Username and password are required")
	}

	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return "", apperrors.Validation(fmt.Sprintf("username '%s' already taken", username))
	} else if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Store(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(user); err != nil {
		return "", err
	}

	return s.issueToken(user.ID)
}

// Login authenticates a user and returns a signed token if successful.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", apperrors.Auth("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.Auth("invalid credentials")
	}

	return s.issueToken(user.ID)
}

// FindUserByToken verifies a token and resolves it to the user it was issued
// for. A token whose user no longer exists is treated as an invalid
// credential, not a missing resource.
func (s *AuthService) FindUserByToken(tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, apperrors.Auth("Authorization token required")
	}

	userID, err := s.verifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Auth("invalid token")
		}
		return nil, err
	}
	return user, nil
}

// issueToken signs a token bound to the given user id.
func (s *AuthService) issueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": userID,
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Store(fmt.Errorf("failed to generate token: %w", err))
	}
	return tokenString, nil
}

// verifyToken parses and verifies a token, returning the user id it carries.
func (s *AuthService) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Auth("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Auth("invalid token")
	}
	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return "", apperrors.Auth("invalid token")
	}
	return userID, nil
}
