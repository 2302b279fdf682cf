package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Araychaudhur/portfolio-2025/internal/pkg/response"
	"github.com/Araychaudhur/portfolio-2025/internal/rag"
)

// Asker is the query pipeline as the transport layer sees it.
type Asker interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
	AskScoped(ctx context.Context, question string, focusSlug string) (*rag.Answer, error)
}

type AskHandler struct {
	engine Asker
}

func NewAskHandler(engine Asker) *AskHandler {
	return &AskHandler{engine: engine}
}

type askRequest struct {
	Question  string `json:"question"`
	Q         string `json:"q"`
	FocusSlug string `json:"focusSlug"`
}

// Ask serves POST bodies with "question" (or "q"), and GET ?q= as a
// convenience alias.
func (h *AskHandler) Ask(c *gin.Context) {
	question := h.questionFrom(c)
	if question == "" {
		response.Error(c, 400, "missing question")
		return
	}
	answer, err := h.engine.Ask(c.Request.Context(), question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, answer)
}

func (h *AskHandler) AskScoped(c *gin.Context) {
	var req askRequest
	_ = c.ShouldBindJSON(&req)
	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(req.Q)
	}
	if question == "" {
		response.Error(c, 400, "missing question")
		return
	}
	answer, err := h.engine.AskScoped(c.Request.Context(), question, req.FocusSlug)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, answer)
}

func (h *AskHandler) questionFrom(c *gin.Context) string {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		return q
	}
	if c.Request.Method == "GET" {
		return ""
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	if q := strings.TrimSpace(req.Question); q != "" {
		return q
	}
	return strings.TrimSpace(req.Q)
}
