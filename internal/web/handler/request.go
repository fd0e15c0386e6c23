package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/rbac"
)

// Body decodes the JSON request body into out.
func Body(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}

	if err := c.Bind().JSON(out); err != nil {
		return apperr.Validation("Invalid request body")
	}

	return nil
}

// ParamID parses the route parameter name as a positive id.
func ParamID(c fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s", name).WithField(name, "invalid")
	}

	return uint(id), nil
}

// QueryID parses the query parameter name as an id. ok is false when it is absent.
func QueryID(c fiber.Ctx, name string) (id uint, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		return 0, false, apperr.Validation("Invalid %s", name).WithField(name, "invalid")
	}

	return uint(v), true, nil
}

// QueryInt parses the query parameter name, def when it is absent.
func QueryInt(c fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("Invalid %s", name).WithField(name, "invalid")
	}

	return v, nil
}

// QueryBool reports whether the query parameter name is set to a true value.
func QueryBool(c fiber.Ctx, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// Audit builds the change log identity of the caller.
func Audit(c fiber.Ctx, notes string) rbac.Audit {
	a := rbac.Audit{IPAddress: c.IP(), Notes: notes}

	if actor := auth.ActorFrom(c); actor != nil {
		id := actor.Employee.ID
		a.PerformedBy = &id
	}

	return a
}
