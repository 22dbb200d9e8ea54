package router

import (
	"net/http"

	"github.com/etiqueta/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the server exposes. Nil entries are not mounted.
type Handlers struct {
	Page     *handler.PageHandler
	Label    *handler.LabelHandler
	Employee *handler.EmployeeHandler
	Postal   *handler.PostalHandler
	System   *handler.SystemHandler

	// Static is served under /static
	Static http.FileSystem
	// LabelMiddleware runs before label generation only
	LabelMiddleware []gin.HandlerFunc
}

// Mount registers the page, label and API routes on engine
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	if h.Page != nil {
		engine.GET("/", h.Page.Index)
	}
	if h.Static != nil {
		engine.StaticFS("/static", h.Static)
	}
	if h.Label != nil {
		chain := append(append([]gin.HandlerFunc{}, h.LabelMiddleware...), h.Label.Generate)
		engine.POST("/gerar-etiqueta", chain...)
	}
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, opts...)
	if h.System != nil {
		r.Register(NewDomainGroup("system", "/system").
			GET("/ping", h.System.Ping).
			GET("/info", h.System.GetSystemInfo))
	}
	if h.Employee != nil {
		r.Register(NewDomainGroup("employee", "/entregador").
			GET("/:code", h.Employee.GetByCode).
			PUT("/:code", h.Employee.Upsert))
	}
	if h.Postal != nil {
		r.Register(NewDomainGroup("postal", "/cep").
			GET("/:cep/json", h.Postal.Lookup))
	}
	r.Setup()
	return r
}
