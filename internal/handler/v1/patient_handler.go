package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/domain/patient"
	"github.com/vkrastev/clinicore/internal/service"
)

type PatientHandler struct {
	svc *service.PatientService
}

func NewPatientHandler(svc *service.PatientService) *PatientHandler {
	return &PatientHandler{svc: svc}
}

type createPatientRequest struct {
	FirstName              string     `json:"first_name" binding:"required"`
	LastName               string     `json:"last_name" binding:"required"`
	DateOfBirth            string     `json:"date_of_birth" binding:"required"`
	Gender                 string     `json:"gender" binding:"required"`
	NationalID             string     `json:"national_id" binding:"required"`
	Phone                  string     `json:"phone"`
	Email                  string     `json:"email"`
	Address                string     `json:"address"`
	City                   string     `json:"city"`
	LastInsurancePaymentAt *time.Time `json:"last_insurance_payment_at"`
	AssignedGPID           *uuid.UUID `json:"assigned_gp_id"`
}

type updatePatientRequest struct {
	FirstName              *string    `json:"first_name"`
	LastName               *string    `json:"last_name"`
	Gender                 *string    `json:"gender"`
	Phone                  *string    `json:"phone"`
	Email                  *string    `json:"email"`
	Address                *string    `json:"address"`
	City                   *string    `json:"city"`
	LastInsurancePaymentAt *time.Time `json:"last_insurance_payment_at"`
	AssignedGPID           *uuid.UUID `json:"assigned_gp_id"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		respondError(c, 400, "invalid date_of_birth: expected YYYY-MM-DD")
		return
	}

	cl := caller(c)
	p, err := h.svc.CreatePatient(c.Request.Context(), &patient.CreatePatientCommand{
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		DateOfBirth:            dob,
		Gender:                 patient.Gender(req.Gender),
		NationalID:             req.NationalID,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		City:                   req.City,
		LastInsurancePaymentAt: req.LastInsurancePaymentAt,
		AssignedGPID:           req.AssignedGPID,
		CreatedBy:              cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl := caller(c)
	p, err := h.svc.GetPatient(c.Request.Context(), id, cl.UserID, string(cl.Role), cl.PatientID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	var gender *patient.Gender
	if req.Gender != nil {
		g := patient.Gender(*req.Gender)
		gender = &g
	}

	cl := caller(c)
	p, err := h.svc.UpdatePatient(c.Request.Context(), &patient.UpdatePatientCommand{
		ID:                     id,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Gender:                 gender,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		City:                   req.City,
		LastInsurancePaymentAt: req.LastInsurancePaymentAt,
		AssignedGPID:           req.AssignedGPID,
		UpdatedBy:              cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PatientHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl := caller(c)
	if err := h.svc.DeactivatePatient(c.Request.Context(), id, cl.UserID, string(cl.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deactivated": id})
}

var patientSortColumns = map[string]string{
	"name":    "last_name",
	"created": "created_at",
}

func (h *PatientHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 20)
	if !ok {
		return
	}

	sortBy := sortColumn(patientSortColumns, c.Query("sort"), "last_name")
	ascending := c.DefaultQuery("order", "asc") != "desc"

	result, err := h.svc.ListPatients(c.Request.Context(), page, size, sortBy, ascending, c.Query("filter"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}
