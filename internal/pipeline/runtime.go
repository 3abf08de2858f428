package pipeline

import (
	"log/slog"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/documents"
)

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure
// and Domain systems.
type Runtime struct {
	AI        ai.System
	Documents documents.System
	Logger    *slog.Logger
}
