package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRoutes - REST API and websocket endpoints
func SetupRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SLAM console server is running.")
	})

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"clients": Manager.GetClientCount(),
			"agents":  slamService.Agents().Count(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	slam := api.Group("/slam")

	slam.Get("/boundary", HandleGetBoundary)
	boundary := slam.Group("/boundary")
	boundary.Post("/drag/begin", HandleDragBegin)
	boundary.Post("/drag/move", HandleDragMove)
	boundary.Post("/drag/end", HandleDragEnd)
	boundary.Post("/reset", HandleResetBoundary)

	slam.Get("/agent", HandleGetAgent)
	slam.Get("/agents", HandleListAgents)

	path := slam.Group("/path")
	path.Get("/config", HandleGetPathConfig)
	path.Put("/config", HandleSetPathConfig)
	path.Post("/generate", HandleGeneratePath)
	path.Post("/simulate", HandleSimulate)
	path.Post("/reset", HandleResetSimulation)
	path.Get("/state", HandleSimulationState)
	path.Get("/preview.png", HandlePathPreview)

	slam.Get("/metrics", HandleMetrics)

	slam.Post("/configs", HandleSaveConfig)
	slam.Get("/configs", HandleListConfigs)
	configs := slam.Group("/configs")
	configs.Get("/:id", HandleGetConfig)
	configs.Post("/:id/apply", HandleApplyConfig)
	configs.Delete("/:id", HandleDeleteConfig)

	testAPI := api.Group("/test")
	testAPI.Get("/agent", HandleVirtualAgentStatus)
	testAPI.Post("/agent/start", HandleStartVirtualAgent)
	testAPI.Post("/agent/stop", HandleStopVirtualAgent)

	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", HandleGetRecentLogs)
	logsAPI.Get("/range", HandleGetLogsByTimeRange)
	logsAPI.Get("/type", HandleGetLogsByEventType)
	logsAPI.Get("/stats", HandleGetLogStats)

	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/websocket/agv", websocket.New(HandleAGVWebSocket))
	app.Get("/websocket/web", websocket.New(HandleWebClientWebSocket))
}
