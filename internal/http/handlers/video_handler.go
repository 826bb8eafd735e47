// Video HTTP handlers:
//   - POST /api/videos/create  (render a stored script)
//   - GET  /api/videos         (caller's recent videos)
//   - GET  /api/videos/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/http/middleware"
	"github.com/tbourn/ai-content-studio/internal/services"
)

const videoNotFound = "Video not found"

// CreateVideoRequest is the JSON payload for video creation.
type CreateVideoRequest struct {
	ScriptID string `json:"script_id" example:"9a0b1c2d3e4f"`
	// Style defaults to professional.
	Style string `json:"style,omitempty" example:"educational"`
	// Voice is a voice key; empty picks the style's default voice.
	Voice string `json:"voice,omitempty" example:"professional_female"`
}

// ListVideosResponse wraps the caller's recent videos.
type ListVideosResponse struct {
	Videos []domain.Video `json:"videos"`
}

// CreateVideo godoc
// @ID          createVideo
// @Summary     Create a video from a script
// @Tags        Videos
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "User ID (demo header)"
// @Param       Idempotency-Key  header  string  false "Idempotency key"
// @Param       body             body    handlers.CreateVideoRequest  true  "Video request"
// @Success     200  {object}  domain.Video
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     404  {object}  handlers.ErrorResponse  "Script not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     429  {object}  handlers.ErrorResponse  "Quota exceeded"
// @Router      /api/videos/create [post]
func (h *Handlers) CreateVideo(c *gin.Context) {
	ctx := c.Request.Context()

	if id, replay := middleware.ReplayOf(c); replay {
		if v, err := h.videos.GetVideo(ctx, id); err == nil {
			c.Header("Idempotent-Replay", "true")
			ok(c, http.StatusOK, v)
			return
		}
	}

	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	v, err := h.videos.CreateVideo(ctx, services.VideoRequest{
		ScriptID: req.ScriptID,
		Style:    domain.Style(req.Style),
		Voice:    req.Voice,
		UserID:   userID(c),
	})
	if err != nil {
		// The only lookup a create performs is the script.
		failErr(c, err, scriptNotFound)
		return
	}
	if err := middleware.Remember(c, v.ID, http.StatusOK); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("video_id", v.ID).Msg("idempotency record failed")
	}
	ok(c, http.StatusOK, v)
}

// GetVideo godoc
// @ID          getVideo
// @Summary     Get a video
// @Tags        Videos
// @Produce     json
// @Param       id   path  string  true  "Video ID"
// @Success     200  {object}  domain.Video
// @Failure     404  {object}  handlers.ErrorResponse  "Video not found"
// @Router      /api/videos/{id} [get]
func (h *Handlers) GetVideo(c *gin.Context) {
	v, err := h.videos.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err, videoNotFound)
		return
	}
	ok(c, http.StatusOK, v)
}

// ListVideos godoc
// @ID          listVideos
// @Summary     List the caller's recent videos
// @Tags        Videos
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"
// @Param       limit      query   int     false "Max videos"  minimum(1) maximum(100) default(10)
// @Success     200  {object}  handlers.ListVideosResponse
// @Router      /api/videos [get]
func (h *Handlers) ListVideos(c *gin.Context) {
	list, err := h.videos.ListByUser(c.Request.Context(), userID(c), queryInt(c, "limit", 10, 1, 100))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if list == nil {
		list = []domain.Video{}
	}
	ok(c, http.StatusOK, ListVideosResponse{Videos: list})
}
