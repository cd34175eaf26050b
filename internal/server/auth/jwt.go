// Package auth issues and verifies the HS256 access tokens handed to API
// clients and decides who is promoted to superadmin.
package auth

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the profile identity plus the role and tenant the token was
// minted for. Guards always reload the profile, so a stale role in a token
// only lasts until it expires.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tid,omitempty"`
}

// Principal is the subject of an access token.
type Principal struct {
	UserID   string
	Role     string
	TenantID string
}

func GenerateToken(p Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:   p.UserID,
		Role:     p.Role,
		TenantID: p.TenantID,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired; any other failure is common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken is ParseToken for callers that only need the user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// RoleForNewTenant returns the role given to the profile that creates a
// tenant: superadmin for allow-listed e-mails, owner otherwise.
func RoleForNewTenant(email string, superAdminEmails []string) string {
	if slices.Contains(superAdminEmails, strings.ToLower(strings.TrimSpace(email))) {
		return common.RoleSuperAdmin
	}
	return common.RoleOwner
}
