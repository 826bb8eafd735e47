// Cost HTTP handlers:
//   - GET  /api/costs           (caller's tracked spend)
//   - GET  /api/costs/estimate  (price text or seconds of audio)
//   - POST /api/costs/optimize
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-content-studio/internal/utils"
)

const maxEstimateSeconds = 3600

// OptimizeRequest is the JSON payload for an optimization run.
type OptimizeRequest struct {
	// TargetSavings in percent. Non-positive values default to 30.
	TargetSavings float64 `json:"target_savings" example:"30"`
}

// CostAnalysis godoc
// @ID          costAnalysis
// @Summary     Cost report of the caller
// @Tags        Costs
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"
// @Success     200  {object}  services.CostAnalysis
// @Router      /api/costs [get]
func (h *Handlers) CostAnalysis(c *gin.Context) {
	ok(c, http.StatusOK, h.costs.Analysis(userID(c)))
}

// EstimateCost godoc
// @ID          estimateCost
// @Summary     Price work before doing it
// @Description With text, prices script generation by token count. With seconds, prices voice rendering.
// @Tags        Costs
// @Produce     json
// @Param       text     query  string  false  "Script text"
// @Param       seconds  query  int     false  "Audio seconds"  minimum(1) maximum(3600)
// @Success     200  {object}  services.CostEstimate
// @Failure     422  {object}  handlers.ErrorResponse  "Neither text nor seconds"
// @Router      /api/costs/estimate [get]
func (h *Handlers) EstimateCost(c *gin.Context) {
	if text := strings.TrimSpace(c.Query("text")); text != "" {
		ok(c, http.StatusOK, h.estimator.EstimateScript(text))
		return
	}
	if secs := utils.AtoiDefault(c.Query("seconds"), 0); secs > 0 {
		ok(c, http.StatusOK, h.estimator.EstimateVideo(min(secs, maxEstimateSeconds)))
		return
	}
	failField(c, http.StatusUnprocessableEntity, ErrCodeValidation, "text or seconds is required", "text")
}

// OptimizeCosts godoc
// @ID          optimizeCosts
// @Summary     Plan cost savings for the caller
// @Tags        Costs
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"
// @Param       body       body    handlers.OptimizeRequest  false  "Target"
// @Success     200  {object}  services.OptimizationResult
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON"
// @Router      /api/costs/optimize [post]
func (h *Handlers) OptimizeCosts(c *gin.Context) {
	var req OptimizeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	ok(c, http.StatusOK, h.estimator.Optimize(userID(c), req.TargetSavings, h.now()))
}
