package topic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
	"github.com/tawfi332/Fsociety-T/backend/pkg/utils"
)

// Handler 话题目录的HTTP处理器
type Handler struct {
	topics topic.Store
	active string
}

// New 创建话题处理器，active 为当前导师使用的话题。
func New(topics topic.Store, active string) *Handler {
	return &Handler{
		topics: topics,
		active: active,
	}
}

// RegisterRoutes 注册话题相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.handleListTopics)
}

type listResponse struct {
	Active string        `json:"active"`
	Topics []topic.Topic `json:"topics"`
}

// handleListTopics 列出所有话题
func (h *Handler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Active: h.active,
		Topics: h.topics.List(),
	})
}
