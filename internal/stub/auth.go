package stub

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Signer mints and verifies the sandbox's JWT token pair. Access tokens are
// short-lived; refresh tokens live long and can be revoked by logout.
type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSigner creates a signer. An empty secret generates a random one, so
// each sandbox instance invalidates tokens from previous runs.
func NewSigner(secret string, accessTTL, refreshTTL time.Duration) *Signer {
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
	}
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type tokenClaims struct {
	Type  string `json:"typ"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// MintAccess issues a short-lived access token for user.
func (s *Signer) MintAccess(user *User) (string, error) {
	return s.mint(user, "access", s.accessTTL)
}

// MintRefresh issues a refresh token for user.
func (s *Signer) MintRefresh(user *User) (string, error) {
	return s.mint(user, "refresh", s.refreshTTL)
}

func (s *Signer) mint(user *User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Type:  typ,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a token and checks its type.
func (s *Signer) Parse(token, wantType string) (*tokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("wrong token type")
	}
	return claims, nil
}

// RequireAuth validates the Authorization bearer token on protected routes.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(401).JSON(fiber.Map{"detail": "authentication required"})
		}
		claims, err := s.signer.Parse(strings.TrimPrefix(header, "Bearer "), "access")
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"detail": "invalid or expired token"})
		}
		c.Locals("user_id", claims.Subject)
		return c.Next()
	}
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"detail": "invalid credentials"})
	}

	access, err := s.signer.MintAccess(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": "failed to issue token"})
	}
	refresh, err := s.signer.MintRefresh(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": "failed to issue token"})
	}

	return c.JSON(fiber.Map{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return c.Status(400).JSON(fiber.Map{"detail": "refresh token required"})
	}
	if s.store.IsRefreshRevoked(req.Refresh) {
		return c.Status(401).JSON(fiber.Map{"detail": "token revoked"})
	}

	claims, err := s.signer.Parse(req.Refresh, "refresh")
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"detail": "invalid refresh token"})
	}

	access, err := s.signer.MintAccess(&User{ID: claims.Subject, Email: claims.Email})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": "failed to issue token"})
	}
	return c.JSON(fiber.Map{"access": access})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return c.Status(400).JSON(fiber.Map{"detail": "refresh token required"})
	}
	if err := s.store.RevokeRefresh(req.Refresh); err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": "failed to revoke token"})
	}
	return c.SendStatus(204)
}
