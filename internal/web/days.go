package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
)

func (s *Server) getDay(c *fiber.Ctx) error {
	view, err := s.planner.Day(c.UserContext(), userID(c), s.dateParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "day": view})
}

func (s *Server) getWakeSleep(c *fiber.Ctx) error {
	ws, err := s.planner.WakeSleep(c.UserContext(), userID(c), s.dateParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "wake_sleep": ws})
}

type gestureRequest struct {
	Proposal layout.Proposal `json:"proposal"`
	// Event carries the title, category and flags of a created event.
	Event models.Event `json:"event"`
}

func (s *Server) commitGesture(c *fiber.Ctx) error {
	var req gestureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	ev, err := s.planner.CommitGesture(c.UserContext(), userID(c), s.dateParam(c), req.Proposal, req.Event)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "event": ev})
}

func (s *Server) feedback(c *fiber.Ctx) error {
	if s.advisor == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "AI feedback is not configured")
	}

	view, err := s.planner.Day(c.UserContext(), userID(c), s.dateParam(c))
	if err != nil {
		return httpError(err)
	}
	fb, err := s.advisor.Feedback(c.UserContext(), view)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "feedback": fb})
}

func (s *Server) getNote(c *fiber.Ctx) error {
	note, err := s.planner.GetNote(c.UserContext(), userID(c), s.dateParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "note": note})
}

func (s *Server) saveNote(c *fiber.Ctx) error {
	var note models.DailyNote
	if err := c.BodyParser(&note); err != nil {
		return badRequest("invalid request body")
	}
	note.Date = s.dateParam(c)

	saved, err := s.planner.SaveNote(c.UserContext(), userID(c), note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "note": saved})
}

func (s *Server) getRoutineCheck(c *fiber.Ctx) error {
	routineID, err := idParam(c, "routineID")
	if err != nil {
		return err
	}
	check, err := s.planner.GetRoutineCheck(c.UserContext(), userID(c), routineID, s.dateParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "check": check})
}

func (s *Server) setRoutineCheck(c *fiber.Ctx) error {
	routineID, err := idParam(c, "routineID")
	if err != nil {
		return err
	}
	var req struct {
		Checked bool `json:"checked"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	check, err := s.planner.SetRoutineCheck(c.UserContext(), userID(c), routineID, s.dateParam(c), req.Checked)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "check": check})
}

func (s *Server) getStats(c *fiber.Ctx) error {
	stats, err := s.planner.Stats(c.UserContext(), userID(c), c.Params("month"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}
