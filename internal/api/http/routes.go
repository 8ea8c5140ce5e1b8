package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

var validate = validator.New()

// SnapshotCache is the optional read-through cache in front of the service
// (satisfied by poller.Poller).
type SnapshotCache interface {
	Latest() (telemetry.Snapshot, bool)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. cache may be nil;
// the snapshot endpoint then derives a fresh snapshot per request.
func RegisterRoutes(app *fiber.App, service *telemetry.Service, cache SnapshotCache) {
	v1 := app.Group("/api/v1")

	v1.Get("/readings/latest", func(c *fiber.Ctx) error {
		reading, err := service.Latest()
		if err != nil {
			if errors.Is(err, telemetry.ErrNoReadings) {
				return fiber.NewError(fiber.StatusNotFound, "no readings in stream yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read stream")
		}
		return c.JSON(reading)
	})

	v1.Get("/readings", func(c *fiber.Ctx) error {
		req, err := parseTailQuery(c, service.ViewWindow())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := service.Tail(req.Limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read stream")
		}

		return c.JSON(fiber.Map{
			"count":    len(readings),
			"readings": readings,
		})
	})

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		if cache != nil {
			if snap, ok := cache.Latest(); ok {
				return c.JSON(snap)
			}
		}
		return c.JSON(service.Snapshot())
	})
}

// tailQuery holds query parameters for the readings endpoint.
type tailQuery struct {
	Limit int `validate:"min=1,max=1000"`
}

func parseTailQuery(c *fiber.Ctx, defaultLimit int) (tailQuery, error) {
	q := tailQuery{Limit: defaultLimit}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = n
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
