package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/present/rest/presenter"
	"github.com/totegamma/catgraph/internal/ratelimit"
)

// LimitSource yields the current per-window request budget; zero or less disables limiting.
type LimitSource func() int

// RateLimitMiddleware must run after AuthMiddleware.IdentifyIdentity so that
// only verified requesters get a bucket of their own.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	limit   LimitSource
}

func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit LimitSource) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
	}
}

func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := m.limit()
		if limit <= 0 {
			return next(c)
		}

		ctx, span := tracer.Start(c.Request().Context(), "RateLimit.Middleware.Limit")
		var requesterID string
		if requester, ok := domain.RequesterFrom(ctx); ok {
			requesterID = requester.Actor.ID
		}
		decision := m.limiter.Allow(ctx, ratelimit.Key(requesterID, c.RealIP()), limit)
		span.SetAttributes(attribute.Int("Count", decision.Count), attribute.Bool("Allowed", decision.Allowed))
		span.End()

		header := c.Response().Header()
		header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			return presenter.TooManyRequests(c, decision.RetryAfter(time.Now()))
		}
		return next(c)
	}
}
