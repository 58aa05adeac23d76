package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/launchpad/internal/auth/domain"
	obscontext "github.com/smallbiznis/launchpad/internal/observability/context"
	"go.uber.org/zap"
)

const (
	contextUserIDKey = "user_id"
	actorTypeUser    = "user"
)

// AuthRequired rejects requests without a valid access token. An expired
// token is renewed once with the refresh cookie.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.authenticate(c); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the caller when a session is present and lets the
// handler decide what an anonymous request means.
func (s *Server) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.authenticate(c)
		c.Next()
	}
}

func (s *Server) authenticate(c *gin.Context) (string, bool) {
	raw, ok := s.sessions.ReadAccessToken(c)
	if !ok {
		return s.refresh(c)
	}

	claims, err := s.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, authdomain.ErrTokenExpired) {
			return s.refresh(c)
		}
		return "", false
	}

	s.setUser(c, claims.UserID)
	return claims.UserID, true
}

func (s *Server) refresh(c *gin.Context) (string, bool) {
	refreshToken, ok := s.sessions.ReadRefreshToken(c)
	if !ok {
		return "", false
	}

	sess, err := s.authsvc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		s.log.Debug("session refresh failed", zap.Error(err))
		s.sessions.Clear(c)
		return "", false
	}

	claims, err := s.verifier.Verify(sess.AccessToken)
	if err != nil {
		s.log.Warn("refreshed token rejected", zap.Error(err))
		return "", false
	}

	s.sessions.Set(c, sess)
	s.setUser(c, claims.UserID)
	return claims.UserID, true
}

func (s *Server) setUser(c *gin.Context, userID string) {
	c.Set(contextUserIDKey, userID)
	ctx := obscontext.WithActor(c.Request.Context(), actorTypeUser, userID)
	c.Request = c.Request.WithContext(ctx)
}

func userIDFromContext(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(contextUserIDKey))
}

// authActionRateLimit throttles an auth action per client address.
func (s *Server) authActionRateLimit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := s.authLimiter.Allow(c.Request.Context(), action, c.ClientIP())
		if !decision.Allowed {
			if decision.RetryAfter > 0 {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				c.Header("Retry-After", strconv.Itoa(seconds))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
