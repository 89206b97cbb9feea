package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/vegasq/tabq/internal/metrics"
	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds the size of a /query request body.
const maxBodyBytes = 10 << 20

// Options configures a Server.
type Options struct {
	Source     reader.Source
	Engine     query.Engine
	Authorizer Authorizer
	Logger     *slog.Logger
	CORSOrigin string
}

// Server exposes the query engine over HTTP.
type Server struct {
	source reader.Source
	engine query.Engine
	logger *slog.Logger
	router *gin.Engine
}

// New builds the router. A nil Logger uses slog.Default, an empty
// CORSOrigin allows every origin and a nil Authorizer rejects every gated
// request.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.Authorizer == nil {
		opts.Authorizer = SecretGate{}
	}

	s := &Server{
		source: opts.Source,
		engine: opts.Engine,
		logger: opts.Logger,
		router: gin.New(),
	}

	s.router.Use(RequestID(), AccessLog(opts.Logger), recovery(), CORS(opts.CORSOrigin))

	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	gated := s.router.Group("/", Gate(opts.Authorizer))
	gated.GET("/datasets", s.handleDatasets)
	gated.POST("/datasets", s.handleDatasets)
	gated.POST("/query", s.handleQuery)
	gated.POST("/authorize", s.handleAuthorize)

	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// recovery turns a panic in a handler into a 500 error response.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		abortWithError(c, Internal(fmt.Errorf("panic: %v", recovered)))
	})
}
