package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepass-server-go/internal/domain/visit"
)

// handleVisitorPassCreate registers a visit and returns the stored record,
// badge fields included, so the client can render the printable pass.
func (s *Service) handleVisitorPassCreate(c *gin.Context) {
	var sub visit.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, err := s.visits.Create(c.Request.Context(), sub)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusCreated, record, "visitor pass created")
}

// handleVisitorPassQR serves the badge QR code as a PNG for printing.
func (s *Service) handleVisitorPassQR(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid visit id")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	png, err := s.visits.QRPNG(c.Request.Context(), uint(id), size)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// handleVisitorsList serves the report view: visits for one calendar day,
// optionally narrowed to a department. Zero matches is a 200 with an empty
// list, never a 404.
func (s *Service) handleVisitorsList(c *gin.Context) {
	day := c.Query("date")
	department := c.Query("department")

	visits, err := s.visits.ListForDay(c.Request.Context(), day, department)
	if err != nil {
		s.respondDomainError(c, err)
		return
	}
	s.respondSuccess(c, http.StatusOK, visits, "")
}
