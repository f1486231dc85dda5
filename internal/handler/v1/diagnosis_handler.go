package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vkrastev/clinicore/internal/domain/diagnosis"
	"github.com/vkrastev/clinicore/internal/service"
)

type DiagnosisHandler struct {
	svc *service.DiagnosisService
}

func NewDiagnosisHandler(svc *service.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{svc: svc}
}

type createDiagnosisRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *DiagnosisHandler) Create(c *gin.Context) {
	var req createDiagnosisRequest
	if !bindJSON(c, &req) {
		return
	}

	cl := caller(c)
	d, err := h.svc.CreateDiagnosis(c.Request.Context(), &diagnosis.CreateDiagnosisCommand{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   cl.UserID,
	}, cl.UserID, string(cl.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, d)
}

func (h *DiagnosisHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDiagnosis(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

var diagnosisSortColumns = map[string]string{
	"name":    "name",
	"created": "created_at",
}

func (h *DiagnosisHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 20)
	if !ok {
		return
	}

	sortBy := sortColumn(diagnosisSortColumns, c.Query("sort"), "name")
	ascending := c.DefaultQuery("order", "asc") != "desc"

	result, err := h.svc.ListDiagnoses(c.Request.Context(), page, size, sortBy, ascending, c.Query("filter"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, result)
}
