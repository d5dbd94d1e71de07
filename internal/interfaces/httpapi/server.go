package httpapi

import (
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	Debug              bool
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerScheduleRoutes(mux, handler)

	origins := cfg.CORSAllowedOrigins
	if cfg.Debug {
		origins = []string{"*"}
	}

	return RequestTracing(RequestLogging(logger, CORS(origins, recoverPanic(logger, cfg.Debug, mux))))
}

func recoverPanic(logger *logging.Logger, debug bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeFailure(ctx, w, crerr.Newf("panic: %v", rec), debug)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
