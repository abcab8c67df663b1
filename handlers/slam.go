package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gonum.org/v1/plot/vg"

	"slam-backend/algorithms"
	"slam-backend/models"
	"slam-backend/services"
)

var (
	slamService  *services.SlamService
	configStore  *services.ConfigStore
	eventLog     *services.LogBuffer
	telemetryBus *services.TelemetryBus
)

// Init - services used by the handlers
func Init(svc *services.SlamService, store *services.ConfigStore, events *services.LogBuffer, bus *services.TelemetryBus) {
	slamService = svc
	configStore = store
	eventLog = events
	telemetryBus = bus
	log.Println("✅ handlers initialized")
}

// errorResponse - {"success": false, "error": ...}
func errorResponse(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// selectionError - unknown algorithm/corner is a client error
func selectionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, algorithms.ErrUnknownAlgorithm) || errors.Is(err, algorithms.ErrUnknownCorner) {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	return errorResponse(c, fiber.StatusInternalServerError, err.Error())
}

// ========================================
// Boundary
// ========================================

// HandleGetBoundary - current boundary and active drag
func HandleGetBoundary(c *fiber.Ctx) error {
	resp := fiber.Map{
		"success":     true,
		"boundary":    slamService.Boundary(),
		"active_drag": nil,
	}
	if corner, ok := slamService.ActiveDrag(); ok {
		resp["active_drag"] = corner
	}
	return c.JSON(resp)
}

// HandleDragBegin - starts dragging a corner
func HandleDragBegin(c *fiber.Ctx) error {
	var req models.DragBeginData
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	changed := slamService.BeginDrag(req.Corner)
	return c.JSON(fiber.Map{
		"success":  true,
		"changed":  changed,
		"boundary": slamService.Boundary(),
	})
}

// HandleDragMove - moves the active corner
func HandleDragMove(c *fiber.Ctx) error {
	var req models.DragMoveData
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	b, changed := slamService.DragTo(req.X, req.Y)
	return c.JSON(fiber.Map{
		"success":  true,
		"changed":  changed,
		"boundary": b,
	})
}

// HandleDragEnd - ends the active drag
func HandleDragEnd(c *fiber.Ctx) error {
	slamService.EndDrag()
	return c.JSON(fiber.Map{
		"success":  true,
		"boundary": slamService.Boundary(),
	})
}

// HandleResetBoundary - default boundary
func HandleResetBoundary(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"boundary": slamService.ResetBoundary(),
	})
}

// ========================================
// Agent
// ========================================

// HandleGetAgent - agent canvas position (null when no feed)
func HandleGetAgent(c *fiber.Ctx) error {
	pos := slamService.AgentPosition()
	status := "disconnected"
	if pos != nil {
		status = "connected"
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"connected": pos != nil,
		"status":    status,
		"position":  pos,
	})
}

// HandleListAgents - registered agents
func HandleListAgents(c *fiber.Ctx) error {
	agents := slamService.Agents().All()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(agents),
		"agents":  agents,
	})
}

// ========================================
// Path
// ========================================

// HandleGetPathConfig - current selection
func HandleGetPathConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":                true,
		"config":                 slamService.PathConfig(),
		"effective_start_corner": slamService.EffectiveStartCorner(),
		"algorithms":             models.PathAlgorithms,
	})
}

// HandleSetPathConfig - updates the selection
func HandleSetPathConfig(c *fiber.Ctx) error {
	var req models.PathConfig
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := slamService.SetPathConfig(req); err != nil {
		return selectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":                true,
		"config":                 slamService.PathConfig(),
		"effective_start_corner": slamService.EffectiveStartCorner(),
	})
}

// HandleGeneratePath - runs the selected generator
func HandleGeneratePath(c *fiber.Ctx) error {
	corner := slamService.EffectiveStartCorner()
	path, err := slamService.GeneratePath()
	if err != nil {
		return selectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":                true,
		"config":                 slamService.PathConfig(),
		"effective_start_corner": corner,
		"count":                  len(path),
		"points":                 path,
	})
}

// HandleSimulate - generates and starts revealing a path
func HandleSimulate(c *fiber.Ctx) error {
	run, path, err := slamService.Simulate()
	if err != nil {
		return selectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"run_id":  run.ID,
		"total":   len(path),
	})
}

// HandleResetSimulation - cancels the simulation
func HandleResetSimulation(c *fiber.Ctx) error {
	slamService.ResetSimulation()
	return c.JSON(fiber.Map{
		"success": true,
		"state":   slamService.SimulationState(),
	})
}

// HandleSimulationState - revealed prefix and running flag
func HandleSimulationState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"state":   slamService.SimulationState(),
	})
}

// HandlePathPreview - PNG of boundary, last path (or a fresh one) and agent
func HandlePathPreview(c *fiber.Ctx) error {
	b := slamService.Boundary()
	agent := slamService.AgentPosition()

	path := slamService.LastPath()
	if len(path) == 0 {
		generated, err := algorithms.Generate(slamService.PathConfig(), b, agent)
		if err != nil {
			return selectionError(c, err)
		}
		path = generated
	}

	data, err := services.RenderPathPNG(b, path, agent, 8*vg.Inch, 6*vg.Inch)
	if err != nil {
		log.Printf("❌ preview render failed: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to render preview")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

// HandleMetrics - derived display values
func HandleMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"metrics": slamService.Metrics(),
	})
}
