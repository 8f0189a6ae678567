package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/daybook/internal/models"
)

func (s *Server) listTodos(c *fiber.Ctx) error {
	todos, err := s.planner.ListTodos(c.UserContext(), userID(c), c.QueryBool("completed"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "todos": todos})
}

func (s *Server) createTodo(c *fiber.Ctx) error {
	var todo models.Todo
	if err := c.BodyParser(&todo); err != nil {
		return badRequest("invalid request body")
	}

	saved, err := s.planner.CreateTodo(c.UserContext(), userID(c), todo)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "todo": saved})
}

// completeTodo marks a todo done; ?promote=true also logs it as an event.
func (s *Server) completeTodo(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	todo, err := s.planner.CompleteTodo(c.UserContext(), userID(c), id, c.QueryBool("promote"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "todo": todo})
}

func (s *Server) deleteTodo(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteTodo(c.UserContext(), userID(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}
