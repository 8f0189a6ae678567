// Package web serves the planner over a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/hray3182/daybook/internal/ai"
	"github.com/hray3182/daybook/internal/planner"
	"github.com/hray3182/daybook/internal/repository"
)

// Advisor reviews a finished day.
type Advisor interface {
	Feedback(ctx context.Context, view *planner.DayView) (*ai.Feedback, error)
}

type Server struct {
	app     *fiber.App
	planner *planner.Service
	advisor Advisor
	auth    *Auth
}

// New builds the HTTP app. advisor may be nil, in which case the feedback
// endpoint answers 503.
func New(svc *planner.Service, advisor Advisor, auth *Auth) *Server {
	s := &Server{
		planner: svc,
		advisor: advisor,
		auth:    auth,
	}

	// Immutable: params and queries outlive the request in cached day views
	// and stored rows.
	s.app = fiber.New(fiber.Config{
		AppName:               "daybook",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		Immutable:             true,
	})
	s.app.Use(logger.New())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	s.routes()
	return s
}

// App exposes the underlying fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api", s.auth.Middleware)

	days := api.Group("/days/:date")
	days.Get("/", s.getDay)
	days.Get("/wake-sleep", s.getWakeSleep)
	days.Post("/gestures", s.commitGesture)
	days.Post("/feedback", s.feedback)
	days.Get("/note", s.getNote)
	days.Put("/note", s.saveNote)
	days.Get("/routine-checks/:routineID", s.getRoutineCheck)
	days.Put("/routine-checks/:routineID", s.setRoutineCheck)

	api.Post("/events", s.createEvent)
	api.Get("/events/:id", s.getEvent)
	api.Patch("/events/:id", s.updateEvent)
	api.Delete("/events/:id", s.deleteEvent)

	api.Get("/categories", s.listCategories)
	api.Post("/categories", s.createCategory)
	api.Put("/categories/:id", s.updateCategory)
	api.Delete("/categories/:id", s.deleteCategory)

	api.Get("/routines", s.listRoutines)
	api.Post("/routines", s.createRoutine)
	api.Put("/routines/:id", s.updateRoutine)
	api.Delete("/routines/:id", s.deleteRoutine)

	api.Get("/todos", s.listTodos)
	api.Post("/todos", s.createTodo)
	api.Post("/todos/:id/complete", s.completeTodo)
	api.Delete("/todos/:id", s.deleteTodo)

	api.Post("/ics/import", s.importICS)
	api.Delete("/ics/imports/:id", s.undoImport)

	api.Get("/stats/:month", s.getStats)

	api.Get("/settings", s.getSettings)
	api.Put("/settings", s.updateSettings)
}

// errorHandler renders every error as {"success": false, "error": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// httpError maps service errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrCategoryInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrInvalidDate),
		errors.Is(err, planner.ErrInvalidInterval),
		errors.Is(err, planner.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	log.Printf("Failed to handle request: %v", err)
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// dateParam reads :date, accepting "today" for the current date.
func (s *Server) dateParam(c *fiber.Ctx) string {
	date := c.Params("date")
	if strings.EqualFold(date, "today") {
		return s.planner.Today()
	}
	return date
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name)
	}
	return int64(id), nil
}
