package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/config"
)

const (
	AccessCookieName   = "sb-access-token"
	RefreshCookieName  = "sb-refresh-token"
	VerifierCookieName = "sb-code-verifier"

	refreshMaxAge  = 60 * 60 * 24 * 30
	verifierMaxAge = 60 * 10
)

// Manager manages auth session cookies.
type Manager struct {
	secure bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{secure: cfg.AuthCookieSecure}
}

func (m *Manager) ReadAccessToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token != "" {
			return token, true
		}
	}
	return m.read(c, AccessCookieName)
}

func (m *Manager) ReadRefreshToken(c *gin.Context) (string, bool) {
	return m.read(c, RefreshCookieName)
}

func (m *Manager) Set(c *gin.Context, s *domain.Session) {
	if s == nil {
		return
	}
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	m.write(c, AccessCookieName, s.AccessToken, maxAge)
	if s.RefreshToken != "" {
		m.write(c, RefreshCookieName, s.RefreshToken, refreshMaxAge)
	}
}

func (m *Manager) Clear(c *gin.Context) {
	m.write(c, AccessCookieName, "", -1)
	m.write(c, RefreshCookieName, "", -1)
}

func (m *Manager) SetVerifier(c *gin.Context, verifier string) {
	m.write(c, VerifierCookieName, verifier, verifierMaxAge)
}

// TakeVerifier returns the PKCE verifier and clears its cookie.
func (m *Manager) TakeVerifier(c *gin.Context) string {
	verifier, _ := m.read(c, VerifierCookieName)
	m.write(c, VerifierCookieName, "", -1)
	return verifier
}

func (m *Manager) read(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (m *Manager) write(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}
