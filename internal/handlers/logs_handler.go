package handlers

import (
	"github.com/gofiber/fiber/v2"

	"resume-screener/internal/repositories"
)

type LogsHandler struct {
	auditRepo repositories.AuditRepository
}

func NewLogsHandler(auditRepo repositories.AuditRepository) *LogsHandler {
	return &LogsHandler{auditRepo: auditRepo}
}

// HandleListLogs handles GET /api/v1/logs, newest first.
func (h *LogsHandler) HandleListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 200)
	offset := c.QueryInt("offset", 0)

	entries, err := h.auditRepo.FindRecent(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch logs",
		})
	}

	return c.JSON(fiber.Map{"items": entries})
}
