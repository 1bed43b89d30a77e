package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"revinsight/internal/analytics"
)

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}

func jsonResponse(ctx *fasthttp.RequestCtx, data any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func errResponse(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetBodyString(msg)
}

// analyticsError maps core errors to responses: validation failures are
// 400s with the message, anything else is a 500.
func analyticsError(ctx *fasthttp.RequestCtx, err error) {
	var ve *analytics.ValidationError
	if errors.As(err, &ve) {
		errResponse(ctx, fasthttp.StatusBadRequest, ve.Msg)
		return
	}
	errResponse(ctx, fasthttp.StatusInternalServerError, "failed to compute analytics")
}

// queryInt reads an integer query arg, falling back to def when absent or
// malformed. Range validation belongs to the caller.
func queryInt(ctx *fasthttp.RequestCtx, key string, def int) int {
	if s := string(ctx.QueryArgs().Peek(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
