package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkrastev/clinicore/internal/domain/visit"
	"github.com/vkrastev/clinicore/internal/service"
)

type VisitHandler struct {
	svc *service.VisitService
}

func NewVisitHandler(svc *service.VisitService) *VisitHandler {
	return &VisitHandler{svc: svc}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type medicineRequest struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

type treatmentRequest struct {
	Description string            `json:"description"`
	Medicines   []medicineRequest `json:"medicines"`
}

type sickLeaveRequest struct {
	StartDate    string `json:"start_date" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
}

type visitRequest struct {
	VisitDate   string            `json:"visit_date" binding:"required"`
	VisitTime   string            `json:"visit_time" binding:"required"`
	PatientID   uuid.UUID         `json:"patient_id" binding:"required"`
	DoctorID    uuid.UUID         `json:"doctor_id" binding:"required"`
	DiagnosisID uuid.UUID         `json:"diagnosis_id" binding:"required"`
	Status      *string           `json:"status"`
	Treatment   *treatmentRequest `json:"treatment"`
	SickLeave   *sickLeaveRequest `json:"sick_leave"`
}

func (r *visitRequest) parse(c *gin.Context) (time.Time, string, *visit.TreatmentInput, *visit.SickLeaveInput, bool) {
	date, err := time.Parse(dateLayout, r.VisitDate)
	if err != nil {
		respondError(c, 400, "invalid visit_date: expected YYYY-MM-DD")
		return time.Time{}, "", nil, nil, false
	}
	if _, err := time.Parse(timeLayout, r.VisitTime); err != nil {
		respondError(c, 400, "invalid visit_time: expected HH:MM")
		return time.Time{}, "", nil, nil, false
	}

	var treatment *visit.TreatmentInput
	if r.Treatment != nil {
		treatment = &visit.TreatmentInput{Description: r.Treatment.Description}
		for _, m := range r.Treatment.Medicines {
			treatment.Medicines = append(treatment.Medicines, visit.MedicineInput{
				Name:      m.Name,
				Dosage:    m.Dosage,
				Frequency: m.Frequency,
			})
		}
	}

	var sickLeave *visit.SickLeaveInput
	if r.SickLeave != nil {
		start, err := time.Parse(dateLayout, r.SickLeave.StartDate)
		if err != nil {
			respondError(c, 400, "invalid sick_leave.start_date: expected YYYY-MM-DD")
			return time.Time{}, "", nil, nil, false
		}
		sickLeave = &visit.SickLeaveInput{StartDate: start, DurationDays: r.SickLeave.DurationDays}
	}

	return date, r.VisitTime, treatment, sickLeave, true
}

func (h *VisitHandler) Create(c *gin.Context) {
	var req visitRequest
	if !bindJSON(c, &req) {
		return
	}
	date, slot, treatment, sickLeave, ok := req.parse(c)
	if !ok {
		return
	}

	cl := caller(c)
	view, err := h.svc.CreateVisit(c.Request.Context(), &visit.CreateVisitCommand{
		VisitDate:   date,
		VisitTime:   slot,
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		DiagnosisID: req.DiagnosisID,
		Treatment:   treatment,
		SickLeave:   sickLeave,
		CreatedBy:   cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, view)
}

func (h *VisitHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req visitRequest
	if !bindJSON(c, &req) {
		return
	}
	date, slot, treatment, sickLeave, ok := req.parse(c)
	if !ok {
		return
	}

	var status *visit.VisitStatus
	if req.Status != nil {
		s := visit.VisitStatus(*req.Status)
		status = &s
	}

	cl := caller(c)
	view, err := h.svc.UpdateVisit(c.Request.Context(), &visit.UpdateVisitCommand{
		ID:          id,
		VisitDate:   date,
		VisitTime:   slot,
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		DiagnosisID: req.DiagnosisID,
		Status:      status,
		Treatment:   treatment,
		SickLeave:   sickLeave,
		UpdatedBy:   cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, view)
}

func (h *VisitHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl := caller(c)
	view, err := h.svc.GetVisit(c.Request.Context(), id, cl.UserID, string(cl.Role), cl.PatientID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, view)
}

func (h *VisitHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl := caller(c)
	if err := h.svc.DeleteVisit(c.Request.Context(), id, cl.UserID, string(cl.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

var visitSortColumns = map[string]string{
	"date":    "visit_date",
	"created": "created_at",
	"status":  "status",
}

func (h *VisitHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 20)
	if !ok {
		return
	}

	sortBy := sortColumn(visitSortColumns, c.Query("sort"), "visit_date")
	ascending := c.DefaultQuery("order", "asc") != "desc"

	var doctorID *uuid.UUID
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, 400, "invalid doctor_id: must be a valid UUID")
			return
		}
		doctorID = &id
	}

	cl := caller(c)
	future, err := h.svc.ListVisits(
		c.Request.Context(),
		page, size, sortBy, ascending,
		c.Query("filter"),
		doctorID,
		string(cl.Role), cl.PatientID,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result, err := future.Wait(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}
