package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
)

func (s *Server) listCategories(c *fiber.Ctx) error {
	categories, err := s.planner.ListCategories(c.UserContext(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "categories": categories})
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var cat models.Category
	if err := c.BodyParser(&cat); err != nil {
		return badRequest("invalid request body")
	}

	saved, err := s.planner.CreateCategory(c.UserContext(), userID(c), cat)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "category": saved})
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var cat models.Category
	if err := c.BodyParser(&cat); err != nil {
		return badRequest("invalid request body")
	}
	cat.CategoryID = id

	saved, err := s.planner.UpdateCategory(c.UserContext(), userID(c), cat)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "category": saved})
}

func (s *Server) deleteCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteCategory(c.UserContext(), userID(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) listRoutines(c *fiber.Ctx) error {
	routines, err := s.planner.ListRoutines(c.UserContext(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "routines": routines})
}

func (s *Server) createRoutine(c *fiber.Ctx) error {
	var r models.Routine
	if err := c.BodyParser(&r); err != nil {
		return badRequest("invalid request body")
	}

	saved, err := s.planner.CreateRoutine(c.UserContext(), userID(c), r)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "routine": saved})
}

func (s *Server) updateRoutine(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var r models.Routine
	if err := c.BodyParser(&r); err != nil {
		return badRequest("invalid request body")
	}
	r.RoutineID = id

	saved, err := s.planner.UpdateRoutine(c.UserContext(), userID(c), r)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "routine": saved})
}

func (s *Server) deleteRoutine(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteRoutine(c.UserContext(), userID(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	settings, err := s.planner.GetSettings(c.UserContext(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "settings": settings})
}

func (s *Server) updateSettings(c *fiber.Ctx) error {
	var patch planner.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest("invalid request body")
	}

	settings, err := s.planner.UpdateSettings(c.UserContext(), userID(c), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "settings": settings})
}
