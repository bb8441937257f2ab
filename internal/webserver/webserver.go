// Package webserver hosts the HTTP surface: one echo instance with session
// and JWT identity resolution, request logging, and role-based write gating.
package webserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/smartstore/smartstore/internal/app"
	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/pkg/metrics"
)

const (
	AppContextKey = "smartstore_app"
	IdentityKey   = "smartstore_identity"
	SessionName   = "smartstore_session"
)

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

var server *WebServer

// Init builds the global web server bound to the application context.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(appCtx.Config().Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			metrics.Incr(metrics.MetricHTTPRequest)
			err := next(c)
			if err != nil {
				zap.L().Warn("http request failed",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return err
		}
	})

	api := e.Group("/api")
	api.Use(authMiddleware(appCtx))
	api.Use(writeGateMiddleware())

	server = &WebServer{root: e, api: api, appCtx: appCtx}
	return server
}

// Instance returns the initialized web server
func Instance() *WebServer {
	return server
}

// Echo exposes the underlying echo instance (tests drive it directly).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func (s *WebServer) Listen() error {
	cfg := s.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	return s.root.Start(addr)
}

// PubPOST registers an unauthenticated route (login).
func PubPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// GetApp extracts the application context stashed by the middleware.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(AppContextKey).(app.AppContext)
}

// GetIdentity returns the authenticated identity, or nil.
func GetIdentity(c echo.Context) *Identity {
	if v, ok := c.Get(IdentityKey).(*Identity); ok {
		return v
	}
	return nil
}

// writeGateMiddleware rejects unsafe methods on resources the caller's role
// may not mutate. Safe methods pass through for any authenticated staff.
func writeGateMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			ident := GetIdentity(c)
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if ident.IsAdmin {
				return next(c)
			}
			if !domain.CanWrite(ident.Role, resourceOf(c.Path())) {
				return echo.NewHTTPError(http.StatusForbidden, "write access denied")
			}
			return next(c)
		}
	}
}

// resourceOf maps a route path to the resource name used by domain.CanWrite.
func resourceOf(path string) string {
	p := strings.TrimPrefix(path, "/api/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	switch p {
	case "staff-types":
		return "staff_type"
	case "staff":
		return "staff"
	case "cart":
		return "cart"
	case "transactions", "orders", "logout", "me":
		return "checkout"
	case "sub-category":
		return "sub_category"
	default:
		return p
	}
}
