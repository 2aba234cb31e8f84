package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nazeru/retail-mock-api/pkg/logging"
)

func newGin(a *API, o Options) http.Handler {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginAccess(o), gin.Recovery())
	if o.RateLimit != nil {
		r.Use(ginRateLimit(o.RateLimit))
	}
	if o.RequestTimeout > 0 {
		r.Use(ginTimeout(o.RequestTimeout))
	}

	if o.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(o.MetricsHandler))
	}
	for _, rt := range a.routes() {
		r.Handle(rt.method, rt.ginPath(), ginHandler(rt.handle))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFound)
	})
	return r
}

func ginHandler(h func(request) response) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := h(toRequest(c.Request, c.Param))
		switch {
		case resp.html != "":
			c.Data(resp.status, "text/html; charset=utf-8", []byte(resp.html))
		case resp.body == nil:
			c.Status(resp.status)
		default:
			c.JSON(resp.status, resp.body)
		}
	}
}

func ginAccess(o Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := requestID(c.Request)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		c.Next()

		o.observe(id, c.Request.Method, c.FullPath(), c.Writer.Status(), start)
	}
}

func ginRateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(clientIP(c.Request)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tooMany)
			return
		}
		c.Next()
	}
}

func ginTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, timedOut)
		}
	}
}
