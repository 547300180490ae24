package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/auth"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/hugohenrick/arte-ideas/pkg/middleware"
	"github.com/hugohenrick/arte-ideas/pkg/tenant"
)

// IdempotencyHeader carries the client-chosen deduplication key
const IdempotencyHeader = "Idempotency-Key"

// caller collects the identity and tenant selector of the request
func caller(ctx *gin.Context) access.Caller {
	return access.Caller{Principal: auth.Principal(ctx), Tenant: tenant.Selector(ctx)}
}

// respondError writes err with the status of its kind. Internal errors are
// logged; their cause never reaches the client.
func respondError(ctx *gin.Context, log logger.Logger, err error) {
	appErr := apperror.From(err)
	requestID := ctx.GetString(middleware.RequestIDKey)
	if appErr.Kind == apperror.KindInternal {
		log.Error("request failed", "request_id", requestID, "path", ctx.FullPath(), "error", err)
	}
	ctx.AbortWithStatusJSON(appErr.HTTPStatus(), dto.NewErrorResponse(appErr, requestID))
}

// bindError reports a request that failed binding. Field rules are
// reported per field; anything else is a malformed body.
func bindError(ctx *gin.Context, log logger.Logger, err error) {
	if fields := validationFields(err); len(fields) > 0 {
		respondError(ctx, log, fields.Err())
		return
	}
	respondError(ctx, log, apperror.Validation(map[string]string{"body": err.Error()}))
}

// queryInt reads an optional integer query parameter
func queryInt(ctx *gin.Context, name string, fallback int) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(map[string]string{name: "must be an integer"})
	}
	return n, nil
}
