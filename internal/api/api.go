// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/finchlaw/redress/internal/config"
	"github.com/finchlaw/redress/internal/infrastructure"
	"github.com/finchlaw/redress/pkg/middleware"
	"github.com/finchlaw/redress/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
