package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
)

// refreshTokenType marks refresh tokens in the type claim.
const refreshTokenType = "refresh"

// TokenConfig holds token codec configuration.
type TokenConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// DefaultTokenConfig returns default token configuration.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret:          secret,
		Issuer:          "taskwell",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

// Claims is the JWT claim set for both token kinds.
//
// Access tokens carry the full identity: phone, names, optional employee
// and tenant, and authority strings. Refresh tokens carry only the
// subject plus type=refresh, so a refresh token can never stand in for
// an access token.
type Claims struct {
	jwt.RegisteredClaims
	Phone       string   `json:"phoneNum,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	EmployeeID  string   `json:"employeeId,omitempty"`
	Authorities []string `json:"roles,omitempty"`
	TenantID    string   `json:"tenantId,omitempty"`
	TokenType   string   `json:"type,omitempty"`
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.TokenType == refreshTokenType
}

// Principal converts access claims into a request principal.
func (c *Claims) Principal() (*appctx.Principal, error) {
	accountID, err := id.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject: %w", err)
	}

	p := &appctx.Principal{
		AccountID:   accountID,
		Phone:       c.Phone,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Authorities: c.Authorities,
	}

	if c.TenantID != "" {
		tenantID, err := id.Parse(c.TenantID)
		if err != nil {
			return nil, fmt.Errorf("parse tenant id: %w", err)
		}
		p.TenantID = &tenantID
	}
	if c.EmployeeID != "" {
		employeeID, err := id.Parse(c.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("parse employee id: %w", err)
		}
		p.EmployeeID = &employeeID
	}

	return p, nil
}

// TokenIdentity is the input for access-token issuance.
type TokenIdentity struct {
	AccountID   id.ID
	Phone       string
	FirstName   string
	LastName    string
	EmployeeID  *id.ID
	TenantID    *id.ID
	Authorities []string
}

// TokenCodec builds and parses signed bearer tokens (HMAC-SHA256).
type TokenCodec struct {
	config TokenConfig
}

// NewTokenCodec creates a new token codec.
func NewTokenCodec(config TokenConfig) *TokenCodec {
	return &TokenCodec{config: config}
}

// AccessTokenTTL returns the configured access-token lifetime.
func (c *TokenCodec) AccessTokenTTL() time.Duration {
	return c.config.AccessTokenTTL
}

// IssueAccess signs a new access token for the identity. The tenant
// claim is present only once a tenant has been selected.
func (c *TokenCodec) IssueAccess(identity TokenIdentity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Subject:   identity.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Phone:       identity.Phone,
		FirstName:   identity.FirstName,
		LastName:    identity.LastName,
		Authorities: identity.Authorities,
	}
	if identity.TenantID != nil {
		claims.TenantID = identity.TenantID.String()
	}
	if identity.EmployeeID != nil {
		claims.EmployeeID = identity.EmployeeID.String()
	}

	signed, err := c.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefresh signs a new refresh token. It carries no authority or
// tenant claims.
func (c *TokenCodec) IssueRefresh(accountID id.ID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.config.RefreshTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: refreshTokenType,
	}

	signed, err := c.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies signature, issuer and expiry atomically and returns
// the claims. Every failure mode yields the same TOKEN_INVALID error;
// the cause is attached for server-side logs only. A token presented at
// exactly its expiry instant is invalid.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(c.config.Secret), nil
		},
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperror.NewTokenInvalid(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewTokenInvalid(fmt.Errorf("invalid token claims"))
	}

	return claims, nil
}

// IsRefreshKind reports whether the token is a valid refresh token.
func (c *TokenCodec) IsRefreshKind(tokenString string) bool {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return false
	}
	return claims.IsRefresh()
}

func (c *TokenCodec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
