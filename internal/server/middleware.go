package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/riparohq/riparo/internal/auditcontext"
	"github.com/riparohq/riparo/internal/identity"
	"go.uber.org/zap"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// lastSeenInterval throttles last_login_at writes to one per user per
// interval instead of one per request.
const lastSeenInterval = time.Hour

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// Identity resolves the caller from the X-User-ID header supplied by
// the upstream auth collaborator. An absent or unknown user falls back
// to the public tier rather than failing the request.
func (s *Server) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		ctx = auditcontext.WithRequestID(ctx, requestID)
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		caller := identity.Caller{AccessLevel: identity.LevelPublic}
		if raw := strings.TrimSpace(c.GetHeader(HeaderUserID)); raw != "" {
			if id, err := snowflake.ParseString(raw); err == nil && id != 0 {
				if user, err := s.userRepo.FindByID(ctx, s.db, id.Int64()); err == nil && user != nil {
					level := identity.AccessLevel(user.AccessLevel)
					if !level.Valid() {
						level = identity.LevelPublic
					}
					caller = identity.Caller{UserID: id, AccessLevel: level}

					if user.LastLoginAt == nil || time.Since(*user.LastLoginAt) > lastSeenInterval {
						if err := s.userRepo.TouchLastLogin(ctx, s.db, user.ID); err != nil {
							s.log.Warn("touch last login failed", zap.Error(err))
						}
					}
				}
			}
		}
		caller.Capabilities = identity.CapabilitiesFor(caller.AccessLevel)
		ctx = identity.WithCaller(ctx, caller)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := identity.CallerFromContext(c.Request.Context())
		if err := s.authzSvc.Authorize(c.Request.Context(), caller, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
