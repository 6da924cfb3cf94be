package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptMaxPasswordBytes is the longest input bcrypt accepts
	bcryptMaxPasswordBytes = 72

	DefaultTokenTTL = time.Hour

	defaultUserLanguage = "en"
)

// JWTManager signs and validates HS256 access tokens whose subject is the user id
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = DefaultTokenTTL
	}
	return &JWTManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (m *JWTManager) GenerateAccessToken(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken returns the subject of a valid, unexpired token
func (m *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token is empty: %w", shared.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %v: %w", err, shared.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims: %w", shared.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// RegisterInput is the payload accepted by Register
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	MobileNo string `json:"mobileno"`
	Role     string `json:"role"`
	Language string `json:"language"`
}

// AuthService registers users, checks passwords and resolves tokens to users
type AuthService struct {
	users UserRepository
	jwt   *JWTManager
}

func NewAuthService(users UserRepository, jwtManager *JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", shared.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", shared.ErrValidation)
	}

	role := models.RoleOther
	if in.Role != "" {
		role = models.Role(strings.ToLower(strings.TrimSpace(in.Role)))
		if !role.IsValid() {
			return nil, fmt.Errorf("unknown role %q: %w", in.Role, shared.ErrValidation)
		}
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = defaultUserLanguage
	}

	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", shared.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword(clampPassword(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		MobileNo:     strings.TrimSpace(in.MobileNo),
		Role:         role,
		Language:     language,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"component": "AuthService",
		"operation": "Register",
		"user_id":   user.ID,
	}).Info("User registered")

	return user, nil
}

// Login returns an access token. Unknown email and wrong password look the same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("invalid credentials: %w", shared.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), clampPassword(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", shared.ErrUnauthorized)
	}

	return s.jwt.GenerateAccessToken(user.ID)
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user no longer exists: %w", shared.ErrUnauthorized)
	}
	return user, nil
}

func clampPassword(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxPasswordBytes {
		b = b[:bcryptMaxPasswordBytes]
	}
	return b
}
