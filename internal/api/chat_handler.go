package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/service"
)

// ChatHandler 聊天令牌处理器
type ChatHandler struct {
	chat service.ChatService
}

// NewChatHandler 创建聊天令牌处理器
func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// VerifyTokenRequest 校验令牌请求
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// IssueTokenRequest 签发令牌请求
type IssueTokenRequest struct {
	DiscordID   string `json:"discord_id" binding:"required"`
	DiscordName string `json:"discord_name" binding:"required"`
}

// IssueTokenResponse 签发令牌响应
type IssueTokenResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyToken 校验聊天令牌
// @Summary 校验聊天令牌
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body VerifyTokenRequest true "令牌"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/verify-token [post]
func (h *ChatHandler) VerifyToken(c *gin.Context) {
	var req VerifyTokenRequest
	// 请求体缺失或格式错误时按缺少令牌处理
	_ = c.ShouldBindJSON(&req)

	user, err := h.chat.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		switch errors.GetCode(err) {
		case errors.ErrInvalidParam:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing token"})
		case errors.ErrChatTokenInvalid:
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token expired or invalid"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// IssueToken 为Discord用户签发聊天令牌（管理员）
func (h *ChatHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.ErrInvalidParam, err.Error()))
		return
	}

	token, err := h.chat.IssueToken(c.Request.Context(), req.DiscordID, req.DiscordName)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &IssueTokenResponse{
		Success:   true,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})
}
