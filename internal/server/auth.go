package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"go.uber.org/zap"
)

func (s *Server) SignUp(c *gin.Context) {
	var req authdomain.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, fielderr.Form("Invalid request"))
		return
	}

	user, err := s.authsvc.SignUp(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?email="+url.QueryEscape(user.Email))
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, fielderr.Form("Invalid request"))
		return
	}

	sess, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout always clears the local session, even when the provider call fails.
func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadAccessToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("provider sign out failed", zap.Error(err))
		}
	}

	s.sessions.Clear(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
