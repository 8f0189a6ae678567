package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/daybook/internal/ics"
)

// importICS imports a raw calendar body. ?source names the calendar and
// ?plan=true files the events into the plan column.
func (s *Server) importICS(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest("empty calendar")
	}
	source := c.Query("source", "upload")

	from, to := ics.Window(time.Now())
	events, err := ics.Events(body, from, to, s.planner.Location(), c.QueryBool("plan"))
	if err != nil {
		return badRequest(err.Error())
	}

	imp, err := s.planner.ImportEvents(c.UserContext(), userID(c), source, c.QueryBool("plan"), events)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "import": imp})
}

func (s *Server) undoImport(c *fiber.Ctx) error {
	if err := s.planner.UndoImport(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}
