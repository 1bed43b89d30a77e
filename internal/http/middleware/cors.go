package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"

	"revinsight/internal/config"
)

// CORS returns middleware that answers preflight requests and attaches the
// allow-origin headers browser clients need. Origins come from
// APP_CORS_ORIGINS; "*" allows any origin.
func CORS(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowed := make(map[string]bool)
	allowAny := false
	for _, o := range strings.Split(cfg.CORSOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
		} else if o != "" {
			allowed[o] = true
		}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			switch {
			case allowAny:
				ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
				ctx.Response.Header.Set("Vary", "Origin")
			}
			ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")

			if string(ctx.Method()) == fasthttp.MethodOptions {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
