package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/simplelibrary/internal/entities"
)

const defaultAuditPageSize = 25

type AuditController struct {
	audit AuditReader
}

func NewAuditController(audit AuditReader) *AuditController {
	return &AuditController{audit: audit}
}

// GetAuditEvents returns paginated audit events as JSON, newest first.
// ?type=book|loan narrows the list.
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultAuditPageSize
	}

	eventType := entities.AuditEventType(c.Query("type"))
	switch eventType {
	case "", entities.AuditEventBook, entities.AuditEventLoan:
	default:
		respondBadRequest(c, "type must be book or loan")
		return
	}
	offset := (page - 1) * limit

	events, total, err := ac.audit.GetEvents(c.Request.Context(), eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}

// GetEntityEvents returns the history of one book or loan, oldest first.
// GET /api/audit/:entity/:id
func (ac *AuditController) GetEntityEvents(c *gin.Context) {
	entity := c.Param("entity")
	if entity != "book" && entity != "loan" {
		respondBadRequest(c, "entity must be book or loan")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	events, err := ac.audit.GetEventsForEntity(c.Request.Context(), entity, id)
	if err != nil {
		respondInternalError(c, err, "list entity audit events")
		return
	}
	c.JSON(http.StatusOK, events)
}
