package security

import (
	"fmt"
	"strconv"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitHandler type spécifique pour Fx
type RateLimitHandler gin.HandlerFunc

// RateLimiter fenêtre fixe par utilisateur authentifié, sinon par IP
type RateLimiter struct {
	cache   redis.Cache
	keys    *redis.RedisKeyGenerator
	limit   int64
	window  time.Duration
	enabled bool
	log     *zap.Logger
}

func NewRateLimiter(appConfig *config.Config, cache redis.Cache, keys *redis.RedisKeyGenerator, log *zap.Logger) *RateLimiter {
	limit := int64(appConfig.RateLimit.Requests)
	if limit <= 0 {
		limit = 60
	}
	window := appConfig.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		cache:   cache,
		keys:    keys,
		limit:   limit,
		window:  window,
		enabled: appConfig.RateLimit.Enabled,
		log:     log,
	}
}

// RateLimitMiddleware middleware global, par IP
func RateLimitMiddleware(limiter *RateLimiter) RateLimitHandler {
	return RateLimitHandler(limiter.Handler())
}

// Handler limite par IP toutes les requêtes, jeton présent ou non : l'en-tête
// Authorization n'est pas encore vérifié à ce stade. Les routes protégées
// ajoutent en plus la fenêtre par utilisateur (PerUser).
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.apply(c, "ip_"+c.ClientIP())
	}
}

// PerUser limite par utilisateur authentifié, doit suivre SessionMiddleware
func (l *RateLimiter) PerUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := "ip_" + c.ClientIP()
		if userID := c.GetString("user_id"); userID != "" {
			identity = "user_" + userID
		}
		l.apply(c, identity)
	}
}

// apply Redis indisponible = requête laissée passer
func (l *RateLimiter) apply(c *gin.Context, identity string) {
	if !l.enabled {
		c.Next()
		return
	}

	key := l.keys.MustKey("ratelimit_api", identity)
	count, ttl, err := l.cache.IncrWithWindow(c.Request.Context(), key, l.window)
	if err != nil {
		l.log.Warn("limitation de débit indisponible", zap.Error(err))
		c.Next()
		return
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if count > l.limit {
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = int(l.window.Seconds())
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		utils.RespondError(c, apperror.TooManyRequests(
			fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes.", retryAfter),
		).WithCode("RATE_LIMIT_EXCEEDED"))
		return
	}

	c.Next()
}
