package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepass-server-go/internal/domain/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// handleRegister creates a staff account. Duplicate names and emails are
// detected case-insensitively.
func (s *Service) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := s.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusCreated, account, "account created")
}

// handleLogin exchanges credentials for a session token. Unknown users and
// wrong passwords get the same response.
func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.auth.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, gin.H{"token": token}, "login successful")
}

// handleCheckAdmin reports whether the presented token carries the admin role.
func (s *Service) handleCheckAdmin(c *gin.Context) {
	claims := claimsFrom(c)
	s.respondSuccess(c, http.StatusOK, gin.H{"isAdmin": claims != nil && claims.IsAdmin()}, "")
}

func (s *Service) handleUsersList(c *gin.Context) {
	accounts, err := s.auth.List(c.Request.Context())
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, accounts, "")
}

// handleUserGet exposes name and email only, for existence probes before
// registration.
func (s *Service) handleUserGet(c *gin.Context) {
	account, err := s.auth.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, gin.H{"name": account.Username, "email": account.Email}, "")
}

func (s *Service) handleUserUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid account id")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := s.auth.Update(c.Request.Context(), uint(id), auth.UpdateRequest{
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, account, "account updated")
}

func (s *Service) handleUserDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := s.auth.Delete(c.Request.Context(), uint(id)); err != nil {
		s.respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
