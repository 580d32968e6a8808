package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-chat-assistant/internal/chat"
	"github.com/i474232898/weather-chat-assistant/internal/locations"
	"github.com/i474232898/weather-chat-assistant/internal/resolve"
	"github.com/i474232898/weather-chat-assistant/internal/session"
	"github.com/i474232898/weather-chat-assistant/internal/weather"
)

var validate = validator.New()

// chatRequest is the body of the conversational weather endpoint.
type chatRequest struct {
	UserID    string `json:"userId" validate:"required"`
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"sessionId"`
}

// locationRequest is the body for saving a user location.
type locationRequest struct {
	UserID   string   `json:"userId" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	IsActive bool     `json:"isActive"`
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

// activateRequest is the body for switching a user's active location.
type activateRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, orch *chat.Orchestrator, sessions session.Store, saved locations.Store) {
	v1 := app.Group("/api/v1")

	v1.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := orch.ResolveFlexibleWeather(c.Context(), req.Message, req.UserID, req.SessionID)
		if err != nil {
			switch {
			case errors.Is(err, resolve.ErrLocationRequired):
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					"please specify a location for your weather question")
			case errors.Is(err, weather.ErrUnavailable):
				return fiber.NewError(fiber.StatusServiceUnavailable,
					"weather data is currently unavailable")
			case errors.Is(err, session.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "session not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to answer weather question")
		}

		return c.JSON(result)
	})

	v1.Get("/sessions/:id", func(c *fiber.Ctx) error {
		sess, err := sessions.FindSessionByID(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "session not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
		}
		return c.JSON(sess)
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		userID := c.Query("userId")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "userId query parameter is required")
		}

		locs, err := saved.ListUserLocations(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
		}
		return c.JSON(fiber.Map{
			"userId":    userID,
			"locations": locs,
		})
	})

	v1.Post("/locations", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := locations.SavedLocation{
			Name:     req.Name,
			IsActive: req.IsActive,
			Lat:      req.Lat,
			Lon:      req.Lon,
		}
		if err := saved.SaveLocation(c.Context(), req.UserID, loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save location")
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	v1.Patch("/locations/activate", func(c *fiber.Ctx) error {
		var req activateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := saved.SetActive(c.Context(), req.UserID, req.Name); err != nil {
			if errors.Is(err, locations.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "saved location not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to activate location")
		}
		return c.JSON(fiber.Map{"userId": req.UserID, "active": req.Name})
	})
}
