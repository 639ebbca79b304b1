package providers

import (
	"net/http"
	"tripgen/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	// Prefix returns a view that registers into the same route table with
	// prefix prepended to every url.
	Prefix(prefix string) RouterProviderInterface
	GetRoutes() []structures.Route
}

type routeTable struct {
	routes []structures.Route
}

type RouterProvider struct {
	table  *routeTable
	prefix string
}

func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	rp.table.routes = append(rp.table.routes, structures.Route{
		Method:  method,
		Url:     rp.prefix + url,
		Handler: handler,
	})
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

func (rp *RouterProvider) Prefix(prefix string) RouterProviderInterface {
	return &RouterProvider{table: rp.table, prefix: rp.prefix + prefix}
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.table.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{table: &routeTable{}}
}
