package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"slam-backend/models"
	"slam-backend/services"
)

type saveConfigRequest struct {
	Name string `json:"name"`
}

// storeError - 404 for unknown ids, 500 otherwise
func storeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrConfigNotFound) {
		return errorResponse(c, fiber.StatusNotFound, err.Error())
	}
	return errorResponse(c, fiber.StatusInternalServerError, err.Error())
}

// HandleSaveConfig - saves the current boundary and selection
func HandleSaveConfig(c *fiber.Ctx) error {
	var req saveConfigRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	snap := slamService.Snapshot()
	rec, err := configStore.Save(req.Name, snap.Boundary(), snap.PathConfig())
	if err != nil {
		return storeError(c, err)
	}

	entry := services.NewConsoleEvent(models.EventConfigSaved, snap.Boundary(), snap.PathConfig())
	entry.DataJSON = `{"id":"` + rec.ID + `"}`
	slamService.RecordEvent(entry)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"config":  rec,
	})
}

// HandleListConfigs - saved configs, newest first
func HandleListConfigs(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	recs, err := configStore.List(limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(recs),
		"configs": recs,
	})
}

// HandleGetConfig - saved config by id
func HandleGetConfig(c *fiber.Ctx) error {
	rec, err := configStore.Get(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"config":  rec,
	})
}

// HandleApplyConfig - loads a saved config into the console
func HandleApplyConfig(c *fiber.Ctx) error {
	rec, err := configStore.Get(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	if err := slamService.Apply(*rec); err != nil {
		return selectionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"boundary": slamService.Boundary(),
		"config":   slamService.PathConfig(),
	})
}

// HandleDeleteConfig - removes a saved config
func HandleDeleteConfig(c *fiber.Ctx) error {
	if err := configStore.Delete(c.Params("id")); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
