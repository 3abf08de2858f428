package api

import (
	"net/http"

	"github.com/finchlaw/redress/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Letters.Handler().Routes(),
		domain.Documents.Handler().Routes(),
		domain.Templates.Handler().Routes(),
	)
}
