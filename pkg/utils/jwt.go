package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultLeeway = 30 * time.Second

// Claims are the auth-provider access token claims this service reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// TokenVerifier checks bearer tokens issued by the auth provider.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

type VerifierConfig struct {
	Secret   string // HS256 project secret
	JWKSURL  string // takes precedence over Secret when set
	Audience string
}

type jwtVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

func NewTokenVerifier(cfg VerifierConfig) (TokenVerifier, error) {
	opts := []jwt.ParserOption{jwt.WithLeeway(defaultLeeway), jwt.WithExpirationRequired()}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	var kf jwt.Keyfunc
	switch {
	case cfg.JWKSURL != "":
		provider, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
		}
		kf = provider.Keyfunc
		opts = append(opts, jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Name, jwt.SigningMethodES256.Name,
		}))
	case cfg.Secret != "":
		key := []byte(cfg.Secret)
		kf = func(token *jwt.Token) (interface{}, error) {
			return key, nil
		}
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	default:
		return nil, errors.New("either a JWT secret or a JWKS url must be set")
	}

	return &jwtVerifier{keyfunc: kf, parser: jwt.NewParser(opts...)}, nil
}

func (v *jwtVerifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil || !token.Valid {
		return Identity{}, errors.Join(ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject is not a uuid", ErrUnauthenticated)
	}

	return Identity{UserID: userID, Email: claims.Email}, nil
}

// CreateToken signs an HS256 token the way the auth provider does; used by tests and local tooling.
func CreateToken(secret string, userID uuid.UUID, email string, audience string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
