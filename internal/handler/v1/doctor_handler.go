package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/domain/doctor"
	"github.com/vkrastev/clinicore/internal/service"
)

type DoctorHandler struct {
	svc *service.DoctorService
}

func NewDoctorHandler(svc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{svc: svc}
}

type createDoctorRequest struct {
	FirstName             string    `json:"first_name" binding:"required"`
	LastName              string    `json:"last_name" binding:"required"`
	SpecialtyID           uuid.UUID `json:"specialty_id" binding:"required"`
	IsGeneralPractitioner bool      `json:"is_general_practitioner"`
}

type updateDoctorRequest struct {
	FirstName             *string    `json:"first_name"`
	LastName              *string    `json:"last_name"`
	SpecialtyID           *uuid.UUID `json:"specialty_id"`
	IsGeneralPractitioner *bool      `json:"is_general_practitioner"`
}

type createSpecialtyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	cl := caller(c)
	d, err := h.svc.CreateDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		SpecialtyID:           req.SpecialtyID,
		IsGeneralPractitioner: req.IsGeneralPractitioner,
		CreatedBy:             cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, d)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	cl := caller(c)
	d, err := h.svc.UpdateDoctor(c.Request.Context(), &doctor.UpdateDoctorCommand{
		ID:                    id,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		SpecialtyID:           req.SpecialtyID,
		IsGeneralPractitioner: req.IsGeneralPractitioner,
		UpdatedBy:             cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

var doctorSortColumns = map[string]string{
	"name":    "last_name",
	"created": "created_at",
}

func (h *DoctorHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 20)
	if !ok {
		return
	}

	sortBy := sortColumn(doctorSortColumns, c.Query("sort"), "last_name")
	ascending := c.DefaultQuery("order", "asc") != "desc"

	result, err := h.svc.ListDoctors(c.Request.Context(), page, size, sortBy, ascending, c.Query("filter"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}

func (h *DoctorHandler) CreateSpecialty(c *gin.Context) {
	var req createSpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}

	cl := caller(c)
	spec, err := h.svc.CreateSpecialty(c.Request.Context(), req.Name, req.Description, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, spec)
}

func (h *DoctorHandler) ListSpecialties(c *gin.Context) {
	specs, err := h.svc.ListSpecialties(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, specs)
}
