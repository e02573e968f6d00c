package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}

	user, err := s.svc.Auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// loginForm accepts the OAuth2 password-flow form fields.
func (s *Server) loginForm(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badInput(c, err)
		return
	}
	s.login(c, req)
}

func (s *Server) loginJSON(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badInput(c, err)
		return
	}
	s.login(c, req)
}

func (s *Server) login(c *gin.Context, req loginRequest) {
	token, err := s.svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}
