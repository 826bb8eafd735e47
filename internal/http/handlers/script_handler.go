// Script HTTP handlers.
//
// This file exposes REST endpoints for scripts:
//   - POST /api/scripts/generate   (generate, idempotent with Idempotency-Key)
//   - GET  /api/scripts            (caller's scripts, paginated, weak ETag)
//   - GET  /api/scripts/search     (rank scripts against a query)
//   - GET  /api/scripts/{id}       (fetch one)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/http/middleware"
	"github.com/tbourn/ai-content-studio/internal/search"
	"github.com/tbourn/ai-content-studio/internal/services"
)

const scriptNotFound = "Script not found"

// GenerateScriptRequest is the JSON payload for script generation.
type GenerateScriptRequest struct {
	// Topic of the script, at least 3 characters.
	Topic string `json:"topic" example:"Remote work productivity"`
	// Duration in seconds, 10 to 300. Defaults to 30.
	Duration *int `json:"duration,omitempty" example:"60"`
	// Style is one of professional, casual, educational, entertaining, sales.
	// Unknown values fall back to professional.
	Style string `json:"style,omitempty" example:"casual"`
}

// ListScriptsResponse wraps a page of scripts and pagination information.
type ListScriptsResponse struct {
	Scripts    []domain.Script `json:"scripts"`
	Pagination Pagination      `json:"pagination"`
}

// SearchScriptsResponse lists ranked matches for a query.
type SearchScriptsResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// GenerateScript godoc
// @ID          generateScript
// @Summary     Generate a script
// @Description Generates a video script from the configured providers, falling back to a local template. Retries with the same Idempotency-Key return the stored script.
// @Tags        Scripts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key"        example(3f0c6a7e-gen-1)
// @Param       body             body    handlers.GenerateScriptRequest  true  "Generation request"
//
// @Success     200  {object}  domain.Script
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     422  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     429  {object}  handlers.ErrorResponse  "Quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/scripts/generate [post]
func (h *Handlers) GenerateScript(c *gin.Context) {
	ctx := c.Request.Context()

	if id, replay := middleware.ReplayOf(c); replay {
		if sc, err := h.scripts.Get(ctx, id); err == nil {
			c.Header("Idempotent-Replay", "true")
			ok(c, http.StatusOK, sc)
			return
		}
	}

	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	duration := services.DefaultDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	sc, err := h.scripts.Generate(ctx, domain.GenerationRequest{
		Topic:    req.Topic,
		Duration: duration,
		Style:    domain.Style(req.Style),
		UserID:   userID(c),
	})
	if err != nil {
		failErr(c, err, scriptNotFound)
		return
	}
	if err := middleware.Remember(c, sc.ID, http.StatusOK); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("script_id", sc.ID).Msg("idempotency record failed")
	}
	ok(c, http.StatusOK, sc)
}

// GetScript godoc
// @ID          getScript
// @Summary     Get a script
// @Tags        Scripts
// @Produce     json
// @Param       id   path  string  true  "Script ID"  example(9a0b1c2d3e4f)
// @Success     200  {object}  domain.Script
// @Failure     404  {object}  handlers.ErrorResponse  "Script not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/scripts/{id} [get]
func (h *Handlers) GetScript(c *gin.Context) {
	sc, err := h.scripts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err, scriptNotFound)
		return
	}
	ok(c, http.StatusOK, sc)
}

// ListScripts godoc
// @ID          listScripts
// @Summary     List the caller's scripts (paginated)
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Scripts
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListScriptsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/scripts [get]
func (h *Handlers) ListScripts(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// Best effort: a stats failure only skips the ETag.
	if count, newest, err := h.scripts.Stats(ctx, uid); err == nil {
		var ts int64
		if newest != nil {
			ts = newest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"scripts:%s:%d:%d:%d:%d"`, uid, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.scripts.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListScriptsResponse{
		Scripts:    items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// SearchScripts godoc
// @ID          searchScripts
// @Summary     Search scripts
// @Description Ranks scripts generated by this instance by word overlap with q.
// @Tags        Scripts
// @Produce     json
// @Param       q    query  string  true   "Query"  example(remote work)
// @Param       k    query  int     false  "Max results"  minimum(1) maximum(20) default(5)
// @Success     200  {object}  handlers.SearchScriptsResponse
// @Failure     422  {object}  handlers.ErrorResponse  "Missing query"
// @Router      /api/scripts/search [get]
func (h *Handlers) SearchScripts(c *gin.Context) {
	q := c.Query("q")
	res, err := h.scripts.Search(c.Request.Context(), q, queryInt(c, "k", 5, 1, 20))
	if err != nil {
		failErr(c, err, scriptNotFound)
		return
	}
	ok(c, http.StatusOK, SearchScriptsResponse{Query: q, Results: res})
}
