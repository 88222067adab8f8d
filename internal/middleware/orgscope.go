package middleware

// orgscope.go resolves the authenticated employee to their organization id.
// Every inventory/order route runs behind this: the resolved org id is the
// tenant boundary for all document state. Resolutions are cached in Redis so
// the employees table is not hit on every request.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"brewpos/internal/apierror"
	"brewpos/internal/repository"
)

// CtxOrgID is the gin context key holding the resolved uuid.UUID.
const CtxOrgID = "org_id"

const orgCacheTTL = 5 * time.Minute

type OrgScope struct {
	employees repository.EmployeeRepository
	rdb       *redis.Client
}

func NewOrgScope(employees repository.EmployeeRepository, rdb *redis.Client) *OrgScope {
	return &OrgScope{employees: employees, rdb: rdb}
}

// Resolve maps the token's employee id to an org id or fails the request.
// An employee without a bound org gets a 403 with an OrgResolutionError body.
func (o *OrgScope) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString(CtxEmployeeID)
		if employeeID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		orgID, err := o.lookup(c.Request.Context(), employeeID)
		if err != nil {
			var orgErr *apierror.OrgResolutionError
			status := http.StatusInternalServerError
			if errors.As(err, &orgErr) {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, apierror.New(err.Error()))
			return
		}

		c.Set(CtxOrgID, orgID)
		c.Next()
	}
}

// OrgID returns the org id stashed by Resolve.
func OrgID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxOrgID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func (o *OrgScope) lookup(ctx context.Context, employeeID string) (uuid.UUID, error) {
	cacheKey := "orgscope:" + employeeID
	if cached, err := o.rdb.Get(ctx, cacheKey).Result(); err == nil {
		if id, perr := uuid.Parse(cached); perr == nil {
			return id, nil
		}
	}

	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return uuid.Nil, &apierror.AuthError{Reason: "malformed employee id"}
	}
	emp, err := o.employees.FindByID(ctx, empID)
	if err != nil {
		return uuid.Nil, &apierror.PersistenceError{Op: "load", Err: err}
	}
	if emp.OrgID == nil {
		return uuid.Nil, &apierror.OrgResolutionError{EmployeeID: employeeID}
	}

	if err := o.rdb.Set(ctx, cacheKey, emp.OrgID.String(), orgCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("orgscope: cache write failed")
	}
	return *emp.OrgID, nil
}
