package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"slam-backend/handlers"
	"slam-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using process environment")
	}

	cfg := services.LoadConfigFromEnv()

	if err := services.InitDatabase(cfg); err != nil {
		log.Fatalf("❌ database init failed: %v", err)
	}

	events := services.NewLogBuffer(services.GetDB(), cfg.LogFlushSize, cfg.LogFlushInterval)
	defer events.Stop()

	bus := services.NewTelemetryBus()
	svc := services.NewSlamService(cfg.SimTick, handlers.Manager.BroadcastMessage)
	svc.SetEventLog(events)
	handlers.Init(svc, services.NewConfigStore(services.GetDB()), events, bus)

	agent := services.NewVirtualAgent(bus, cfg.OdomTopic, handlers.Manager.BroadcastMessage)
	defer agent.Stop()
	handlers.SetVirtualAgent(agent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go handlers.Manager.Start()
	go svc.ConsumeTelemetry(ctx, bus, cfg.OdomTopic)
	go svc.WatchAgents(ctx, cfg.AgentTimeout)

	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	handlers.SetupRoutes(app)

	go func() {
		<-ctx.Done()
		log.Println("🛑 shutting down")
		svc.ResetSimulation()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ shutdown: %v", err)
		}
	}()

	log.Printf("🚀 server: http://localhost:%s", cfg.Port)
	log.Printf("📡 console WebSocket: ws://localhost:%s/websocket/web", cfg.Port)
	log.Printf("🤖 agent WebSocket: ws://localhost:%s/websocket/agv (topic %s)", cfg.Port, cfg.OdomTopic)
	log.Printf("🧪 virtual agent: POST http://localhost:%s/api/test/agent/start", cfg.Port)
	log.Printf("💾 log API: GET http://localhost:%s/api/logs/*", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("❌ listen: %v", err)
	}
}
