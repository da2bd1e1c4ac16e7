package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/utils"
)

const (
	ctxDiscordID = "discordID"
	ctxName      = "name"
	ctxRole      = "role"
)

// SessionMiddleware 基于会话Cookie的认证中间件
type SessionMiddleware struct {
	jwt        *utils.JWTManager
	cookieName string
}

// NewSessionMiddleware 创建会话认证中间件
func NewSessionMiddleware(jwt *utils.JWTManager, cookieName string) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "user_session"
	}
	return &SessionMiddleware{
		jwt:        jwt,
		cookieName: cookieName,
	}
}

// CookieName 会话Cookie名
func (m *SessionMiddleware) CookieName() string {
	return m.cookieName
}

// RequireSession 需要登录的中间件，未登录返回401
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalSession 可选认证的中间件（不强制要求登录）
func (m *SessionMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c)
		c.Next()
	}
}

// RequireRole 需要特定角色的中间件
func (m *SessionMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !HasAnyRole(c, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// authenticate 校验Cookie中的令牌并写入上下文
func (m *SessionMiddleware) authenticate(c *gin.Context) bool {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return false
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return false
	}

	c.Set(ctxDiscordID, claims.DiscordID())
	c.Set(ctxName, claims.Name)
	c.Set(ctxRole, claims.Role)
	return true
}

// GetDiscordID 从上下文获取Discord用户ID
func GetDiscordID(c *gin.Context) (string, bool) {
	id := c.GetString(ctxDiscordID)
	return id, id != ""
}

// GetUserRole 从上下文获取用户角色
func GetUserRole(c *gin.Context) (string, bool) {
	role := c.GetString(ctxRole)
	return role, role != ""
}

// HasAnyRole 检查是否有任一角色
func HasAnyRole(c *gin.Context, roles ...string) bool {
	if userRole, exists := GetUserRole(c); exists {
		for _, role := range roles {
			if userRole == role {
				return true
			}
		}
	}
	return false
}
