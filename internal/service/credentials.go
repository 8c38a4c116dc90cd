package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/internnepal/jobboard/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCodeDigits     = 6
	DefaultTokenByteCount = 32
)

var ErrInvalidAccessToken = errors.New("invalid access token")

// Claims is the payload of a bearer token issued at login.
type Claims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// CredentialService hashes and verifies passwords, generates one-time secrets
// and signs bearer tokens. It holds no persistent state.
type CredentialService struct {
	bcryptCost int
	jwtSecret  []byte
	jwtExpiry  time.Duration
	dummyHash  []byte
}

func NewCredentialService(jwtSecret string, jwtExpiry time.Duration, bcryptCost int) *CredentialService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the account does not exist so that unknown emails
	// take as long as wrong passwords.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

	return &CredentialService{
		bcryptCost: bcryptCost,
		jwtSecret:  []byte(jwtSecret),
		jwtExpiry:  jwtExpiry,
		dummyHash:  dummyHash,
	}
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword never returns an error; any mismatch or malformed hash is false.
func (s *CredentialService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burnPasswordCheck runs one comparison against a throwaway hash.
func (s *CredentialService) burnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

// GenerateNumericCode returns a uniformly random string of digits drawn from crypto/rand.
func (s *CredentialService) GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultCodeDigits
	}

	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCrypto, err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// GenerateOpaqueToken returns byteLength random bytes, hex encoded.
func (s *CredentialService) GenerateOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenByteCount
	}
	bytes := make([]byte, byteLength)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return hex.EncodeToString(bytes), nil
}

func (s *CredentialService) IssueAccessToken(user *model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.jwtExpiry)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	return tokenString, expiresAt, nil
}

func (s *CredentialService) ParseAccessToken(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidAccessToken
	}

	return claims, nil
}
