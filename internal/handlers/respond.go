package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// dbTimeout bounds every storage round-trip made from a handler so a slow
// store surfaces as a 504 instead of a hung request.
const dbTimeout = 5 * time.Second

type apiError struct {
	Msg string `json:"msg"`
}

type errorResponse struct {
	Errors []apiError `json:"errors"`
}

func respondErrors(c *fiber.Ctx, status int, msgs ...string) error {
	errs := make([]apiError, 0, len(msgs))
	for _, msg := range msgs {
		errs = append(errs, apiError{Msg: msg})
	}
	return c.Status(status).JSON(errorResponse{Errors: errs})
}

// respondStorageFailure maps storage faults: timeouts become a retriable
// 504, everything else a generic 500 with detail kept in the server log.
func respondStorageFailure(c *fiber.Ctx, log *logrus.Logger, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if log != nil {
			log.WithFields(logrus.Fields{"op": op}).Warn("storage timeout")
		}
		return respondErrors(c, fiber.StatusGatewayTimeout, "Upstream timeout")
	}
	if log != nil {
		log.WithFields(logrus.Fields{"op": op, "error": err.Error()}).Error("storage failure")
	}
	return respondErrors(c, fiber.StatusInternalServerError, "Server Error")
}
