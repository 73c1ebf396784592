package middleware

import (
	"strings"

	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/session"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// IdentityMiddleware 每个请求只解析一次身份：
// Bearer JWT 走教师/管理员，否则当学生会话令牌查；
// 都没有就是匿名。解析失败不在这里拦，交给 RequireAuth
func IdentityMiddleware(resolver *authz.Resolver, sessions session.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, resolveIdentity(c, resolver, sessions, jwtSecret))
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, resolver *authz.Resolver, sessions session.Store, jwtSecret string) authz.Identity {
	token := bearerToken(c)
	if token == "" {
		// 学生端也可能走 cookie
		if cookie, err := c.Cookie(util.SessionCookieName); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return authz.Anonymous()
	}

	// 先按员工 JWT 解析，不是合法 JWT 再按学生会话令牌查
	if claims, err := util.ParseJWT(token, jwtSecret); err == nil {
		identity, err := resolver.ResolveStaff(claims.ProfileID)
		if err != nil {
			return authz.Anonymous()
		}
		c.Set("staff_claims", claims)
		return identity
	}

	sess, err := sessions.Get(c.Request.Context(), token)
	if err != nil || sess == nil {
		return authz.Anonymous()
	}
	return authz.StudentIdentity(sess.StudentID, sess.ClassID, sess.Token)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetIdentity 取中间件解析好的身份，没经过中间件时按匿名处理
func GetIdentity(c *gin.Context) authz.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return authz.Anonymous()
	}
	identity, ok := value.(authz.Identity)
	if !ok {
		return authz.Anonymous()
	}
	return identity
}

// RequireAuth 匿名一律 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).Authenticated() {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff 只放行教师/管理员
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).IsStaff() {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles 管理员直接放行，其余按角色匹配
func RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity.Kind == authz.KindAdmin {
			c.Next()
			return
		}

		for _, role := range roles {
			if (role == model.Teacher && identity.Kind == authz.KindTeacher) ||
				(role == model.Student && identity.Kind == authz.KindStudent) {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
