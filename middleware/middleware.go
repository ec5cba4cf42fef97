package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"edadash/config"
	"edadash/store"
)

const (
	SessionCookie  = "eda_session"
	localWorkspace = "workspace"
)

// Session attaches the caller's upload workspace, creating one (and setting
// the cookie) when the cookie is missing or its workspace was evicted.
func Session(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, created := s.GetOrCreate(c.Cookies(SessionCookie))
		if created {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    ws.ID,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localWorkspace, ws)
		return c.Next()
	}
}

// Workspace returns the session workspace set by Session.
func Workspace(c *fiber.Ctx) (*store.Workspace, bool) {
	ws, ok := c.Locals(localWorkspace).(*store.Workspace)
	return ws, ok
}

// RequestLogger logs every request with its status and latency.
func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	fields := logrus.Fields{
		"method":    c.Method(),
		"path":      c.Path(),
		"status":    status,
		"latencyMs": time.Since(start).Milliseconds(),
	}
	if ws, ok := Workspace(c); ok {
		fields["session"] = ws.ID
	}
	entry := config.GetLogger().WithFields(fields)
	if status >= fiber.StatusInternalServerError {
		entry.Warn("request failed")
	} else {
		entry.Debug("request")
	}
	return err
}
