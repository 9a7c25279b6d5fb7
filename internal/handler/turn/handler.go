package turn

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	turnservice "github.com/tawfi332/Fsociety-T/backend/internal/service/turn"
	"github.com/tawfi332/Fsociety-T/backend/pkg/utils"
)

const maxSubmitBytes = 16 << 10

// Handler 对话轮次的HTTP处理器
type Handler struct {
	controller *turnservice.Controller
}

// New 创建轮次处理器
func New(controller *turnservice.Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes 注册轮次相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/turns", h.handleSubmit)
	r.Get("/transcript", h.handleTranscript)
	r.Get("/status", h.handleStatus)
}

type submitRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type statusResponse struct {
	Pending bool   `json:"pending"`
	State   string `json:"state"`
}

// handleSubmit 提交用户发言。被拒绝的提交不是错误，返回 accepted=false。
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := utils.DecodeJSON(w, r, maxSubmitBytes, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.controller.Submit(r.Context(), payload.Text)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusAccepted, submitResponse{Accepted: true})
	case RejectReason(err) != "":
		utils.RespondJSON(w, http.StatusOK, submitResponse{Reason: RejectReason(err)})
	default:
		utils.RespondError(w, http.StatusInternalServerError, "submission failed")
	}
}

// handleTranscript 返回完整对话记录与等待状态
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.controller.Snapshot())
}

// handleStatus 返回当前状态
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := h.controller.State()
	utils.RespondJSON(w, http.StatusOK, statusResponse{
		Pending: state == turnservice.StatePending,
		State:   state.String(),
	})
}

// RejectReason maps a rejected submission to its wire reason. It returns ""
// for errors that are not rejections.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, turnservice.ErrEmptyInput):
		return "empty"
	case errors.Is(err, turnservice.ErrTurnPending):
		return "pending"
	default:
		return ""
	}
}
