package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/config"
	"github.com/finchlaw/redress/internal/documents"
	"github.com/finchlaw/redress/internal/letters"
	"github.com/finchlaw/redress/internal/pipeline"
	"github.com/finchlaw/redress/internal/revisions"
	"github.com/finchlaw/redress/internal/templates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Templates templates.System
	Revisions revisions.System
	Letters   letters.System
}

// NewDomain creates all domain systems from the API runtime. The analysis
// pipeline is bound to the letters service as its document analyzer.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	docsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	templatesSystem := templates.New(db, runtime.Logger, runtime.Pagination)
	revisionsSystem := revisions.New(db, runtime.Logger)

	aiSystem, err := ai.New(&cfg.AI, runtime.Agent, runtime.Logger)
	if err != nil {
		return nil, err
	}

	pipelineRuntime := &pipeline.Runtime{
		AI:        aiSystem,
		Documents: docsSystem,
		Logger:    runtime.Logger,
	}

	lettersSystem := letters.New(letters.Dependencies{
		Store:     letters.NewStore(db, runtime.Logger, runtime.Pagination),
		Documents: docsSystem,
		Templates: templatesSystem,
		Revisions: revisionsSystem,
		AI:        aiSystem,
		Analyzer: func(
			ctx context.Context,
			letterID, firmID uuid.UUID,
			documentIDs []uuid.UUID,
		) (*pipeline.Result, error) {
			return pipeline.Execute(ctx, pipelineRuntime, letterID, firmID, documentIDs)
		},
		Logger:     runtime.Logger,
		Pagination: runtime.Pagination,
	})

	return &Domain{
		Documents: docsSystem,
		Templates: templatesSystem,
		Revisions: revisionsSystem,
		Letters:   lettersSystem,
	}, nil
}
