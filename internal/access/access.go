// Package access holds the shared-password gates and the session tokens handed out
// after an employee picks themselves from the roster.
package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Session roles.
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// ErrWrongPassword is returned by Gate.Check on a mismatch.
var ErrWrongPassword = errors.New("wrong password")

// Gate compares a submitted password against one shared constant password.
type Gate struct {
	hash []byte
}

// NewGate hashes password once so later checks never compare plaintext.
func NewGate(password string) (*Gate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash gate password: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// Check returns ErrWrongPassword unless password matches.
func (g *Gate) Check(password string) error {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// Claims identify the caller of an API request.
type Claims struct {
	Employee string `json:"employee,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token issuer with a 24 hour lifetime.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: 24 * time.Hour, now: time.Now}
}

// Issue signs a token for employee with the given role.
func (t *Tokens) Issue(employee, role string) (string, error) {
	now := t.now()
	claims := Claims{
		Employee: employee,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies a signed token and returns its claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role != RoleEmployee && claims.Role != RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}
