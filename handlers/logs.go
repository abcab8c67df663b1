package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func queryLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return limit
}

// HandleGetRecentLogs - latest console events
func HandleGetRecentLogs(c *fiber.Ctx) error {
	logs, err := eventLog.GetRecentLogs(queryLimit(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogsByTimeRange - events between start and end (RFC3339)
func HandleGetLogsByTimeRange(c *fiber.Ctx) error {
	startStr := c.Query("start")
	endStr := c.Query("end")

	// default: last 24 hours
	start := time.Now().Add(-24 * time.Hour)
	if startStr != "" {
		parsed, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid start time format (use RFC3339)")
		}
		start = parsed
	}

	end := time.Now()
	if endStr != "" {
		parsed, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid end time format (use RFC3339)")
		}
		end = parsed
	}

	logs, err := eventLog.GetLogsByTimeRange(start, end, queryLimit(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"time_range": fiber.Map{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
		"logs": logs,
	})
}

// HandleGetLogsByEventType - events of one type
func HandleGetLogsByEventType(c *fiber.Ctx) error {
	eventType := c.Query("event_type")
	if eventType == "" {
		return errorResponse(c, fiber.StatusBadRequest, "event_type parameter is required")
	}

	logs, err := eventLog.GetLogsByEventType(eventType, queryLimit(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(logs),
		"event_type": eventType,
		"logs":       logs,
	})
}

// HandleGetLogStats - event counts over the last N hours
func HandleGetLogStats(c *fiber.Ctx) error {
	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	stats, err := eventLog.GetLogStats(hours)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
