package handlers

import (
	"github.com/gofiber/fiber/v2"

	"slam-backend/algorithms"
	"slam-backend/models"
	"slam-backend/services"
)

var virtualAgent *services.VirtualAgent

// SetVirtualAgent - built-in test agent used by /api/test/agent
func SetVirtualAgent(a *services.VirtualAgent) {
	virtualAgent = a
}

// HandleStartVirtualAgent - drives the virtual agent along the current path
func HandleStartVirtualAgent(c *fiber.Ctx) error {
	b := slamService.Boundary()

	path := slamService.LastPath()
	if len(path) == 0 {
		generated, err := algorithms.Generate(slamService.PathConfig(), b, slamService.AgentPosition())
		if err != nil {
			return selectionError(c, err)
		}
		path = generated
	}

	route := make([]models.RawPosition, len(path))
	for i, p := range path {
		route[i] = services.FromCanvas(b, p, 0)
	}

	if _, err := slamService.Agents().Get(services.VirtualAgentID); err != nil {
		if err := slamService.AgentConnected(services.VirtualAgentID); err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	virtualAgent.Start(route)

	return c.JSON(fiber.Map{
		"success":   true,
		"waypoints": len(route),
	})
}

// HandleStopVirtualAgent - halts the virtual agent and drops its feed
func HandleStopVirtualAgent(c *fiber.Ctx) error {
	virtualAgent.Stop()
	if _, err := slamService.Agents().Get(services.VirtualAgentID); err == nil {
		slamService.AgentDisconnected(services.VirtualAgentID)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleVirtualAgentStatus - virtual agent state
func HandleVirtualAgentStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  virtualAgent.GetStatus(),
	})
}
