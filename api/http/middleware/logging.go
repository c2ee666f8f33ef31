package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"github.com/artem13815/feedback/pkg/logging"
)

// RequestIDKey is where the requestid middleware leaves the id.
const RequestIDKey = "requestid"

// NewAccessLog returns a Fiber middleware that attaches a request-scoped logrus
// entry to the user context and writes one access line per request.
func NewAccessLog(base logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		entry := base.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   utils.CopyString(c.Path()),
		})
		if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
			entry = entry.WithField("request_id", id)
		}
		c.SetUserContext(logging.WithLogger(c.UserContext(), entry))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		line := entry.WithFields(logrus.Fields{
			"status":  status,
			"latency": time.Since(started),
		})
		if status >= fiber.StatusInternalServerError {
			line.Error("request handled")
		} else {
			line.Info("request handled")
		}
		return err
	}
}
