package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"myhotel/middleware"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, services.Validation("invalid_id", fmt.Sprintf("Invalid %s %q.", name, raw))
	}
	return uint(id), nil
}

// queryMode reads ?mode=default|with_deleted|deleted_only.
func queryMode(c *gin.Context) (services.QueryMode, error) {
	return services.ParseQueryMode(c.Query("mode"))
}

func queryUint(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, services.Validation("invalid_query", fmt.Sprintf("%s must be a positive number.", key))
	}
	return uint(v), nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, services.Validation("invalid_query", fmt.Sprintf("%s must be a non-negative number.", key))
	}
	return v, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, services.Validation("invalid_query", fmt.Sprintf("%s must be a YYYY-MM-DD date.", key))
	}
	return &t, nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return services.Validation("invalid_payload", "Request body is not valid JSON.")
	}
	return nil
}

// softDelete runs del for the :id record on behalf of the caller.
func softDelete(c *gin.Context, log *zap.Logger, del func(ctx context.Context, id uint, actorID *uint) error) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	if err := del(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

func restore(c *gin.Context, log *zap.Logger, undo func(ctx context.Context, id uint) error) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	if err := undo(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": false})
}

// listRecords renders the result of fetch for the ?mode of the request.
func listRecords[T any](c *gin.Context, log *zap.Logger, fetch func(ctx context.Context, mode services.QueryMode) ([]T, error)) {
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	rows, err := fetch(c.Request.Context(), mode)
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rows)
}

func getRecord[T any](c *gin.Context, log *zap.Logger, fetch func(ctx context.Context, id uint) (T, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	row, err := fetch(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, row)
}

func createRecord[In, T any](c *gin.Context, log *zap.Logger, save func(ctx context.Context, in In) (T, error)) {
	var in In
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	row, err := save(c.Request.Context(), in)
	if err != nil {
		middleware.WriteError(c, log, err, in)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, row)
}

func updateRecord[In, T any](c *gin.Context, log *zap.Logger, save func(ctx context.Context, id uint, in In) (T, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	var in In
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, log, err, nil)
		return
	}
	row, err := save(c.Request.Context(), id, in)
	if err != nil {
		middleware.WriteError(c, log, err, in)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, row)
}
