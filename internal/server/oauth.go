package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/launchpad/internal/auth/domain"
	"go.uber.org/zap"
)

const callbackPath = "/api/auth/callback"

func (s *Server) OAuthStart(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	redirectTo := s.cfg.SiteURL + callbackPath
	if next := safeNext(c.Query("next")); next != "/" {
		redirectTo += "?next=" + url.QueryEscape(next)
	}

	start, err := s.authsvc.StartOAuth(c.Request.Context(), provider, redirectTo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.SetVerifier(c, start.CodeVerifier)
	c.Redirect(http.StatusFound, start.URL)
}

// OAuthCallback exchanges the provider code for a session and opens the
// caller's default organization.
func (s *Server) OAuthCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	next := safeNext(c.Query("next"))
	verifier := s.sessions.TakeVerifier(c)

	landing, err := s.authsvc.CompleteOAuth(c.Request.Context(), code, verifier)
	if !s.land(c, landing, err, "oauth callback") {
		return
	}

	c.Redirect(http.StatusFound, s.callbackOrigin(c)+"/"+landing.OrganizationSlug+next)
}

func (s *Server) ConfirmEmail(c *gin.Context) {
	tokenHash := strings.TrimSpace(c.Query("token_hash"))
	otpType := strings.TrimSpace(c.Query("type"))
	next := safeNext(c.Query("next"))

	landing, err := s.authsvc.ConfirmEmail(c.Request.Context(), tokenHash, otpType)
	if !s.land(c, landing, err, "email confirmation") {
		return
	}

	c.Redirect(http.StatusFound, "/"+landing.OrganizationSlug+next)
}

// land stores the session of a completed round trip. Every failure answers
// 404; a valid session without an organization is still kept.
func (s *Server) land(c *gin.Context, landing *authdomain.Landing, err error, flow string) bool {
	if landing != nil && landing.Session != nil {
		s.sessions.Set(c, landing.Session)
	}
	if err == nil && landing != nil && landing.OrganizationSlug != "" {
		return true
	}

	if err != nil && !errors.Is(err, authdomain.ErrNoOrganization) {
		s.log.Warn(flow+" failed", zap.Error(err))
	}
	AbortWithError(c, ErrNotFound)
	return false
}

// callbackOrigin is the public origin the browser used. Outside development
// a load balancer may sit in front, so X-Forwarded-Host wins.
func (s *Server) callbackOrigin(c *gin.Context) string {
	if !s.cfg.IsDevelopment() {
		if host := strings.TrimSpace(c.GetHeader("X-Forwarded-Host")); host != "" {
			return "https://" + host
		}
	}

	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
