package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepass-server-go/internal/platform/errors"
)

func (s *Service) handleDepartmentCreate(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	department, err := s.directory.Create(c.Request.Context(), req.Name)
	if err != nil {
		// duplicates surface as 400 on this endpoint, unlike account
		// registration which reports 409
		if errors.IsKind(err, errors.KindConflict) {
			s.respondError(c, http.StatusBadRequest, "department already exists")
			return
		}
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusCreated, department, "department created")
}

func (s *Service) handleDepartmentsList(c *gin.Context) {
	departments, err := s.directory.List(c.Request.Context())
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, departments, "")
}

// handleDepartmentDelete removes a department. Deleting an absent id still
// reports success.
func (s *Service) handleDepartmentDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid department id")
		return
	}

	if err := s.directory.Delete(c.Request.Context(), uint(id)); err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, nil, "department deleted")
}
