package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/daybook/internal/models"
)

func (s *Server) createEvent(c *fiber.Ctx) error {
	var ev models.Event
	if err := c.BodyParser(&ev); err != nil {
		return badRequest("invalid request body")
	}

	saved, err := s.planner.CreateEvent(c.UserContext(), userID(c), ev)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "event": saved})
}

func (s *Server) getEvent(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ev, err := s.planner.GetEvent(c.UserContext(), userID(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "event": ev})
}

func (s *Server) updateEvent(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var patch models.EventPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest("invalid request body")
	}

	ev, err := s.planner.UpdateEvent(c.UserContext(), userID(c), id, patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "event": ev})
}

func (s *Server) deleteEvent(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteEvent(c.UserContext(), userID(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}
