package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/data/aggregates"
	"github.com/yungbote/coursetree/internal/data/graph"
	"github.com/yungbote/coursetree/internal/data/repos"
	"github.com/yungbote/coursetree/internal/modules/ingestion/docs"
	"github.com/yungbote/coursetree/internal/modules/ingestion/patch"
	"github.com/yungbote/coursetree/internal/modules/ingestion/persist"
	"github.com/yungbote/coursetree/internal/modules/ingestion/pipeline"
	"github.com/yungbote/coursetree/internal/modules/ingestion/source"
	"github.com/yungbote/coursetree/internal/observability"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type Services struct {
	Runner *pipeline.Runner
	Writer *persist.Writer
}

// wireServices builds the runner. A nil repo set yields a validate-only runner.
func wireServices(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, db *gorm.DB, set *repos.Set, clients Clients) Services {
	log.Info("Wiring services...")
	deps := pipeline.Deps{
		Log:     log,
		Metrics: metrics,
		Loader:  docs.NewLoader(log),
		Open: func(ctx context.Context, location string) (source.Source, error) {
			return source.Open(ctx, location, cfg.ObjectStore, log)
		},
		Locker: clients.Locker,
	}

	var writer *persist.Writer
	if set != nil {
		agg := aggregates.NewCourseTreeAggregate(aggregates.DepsFromSet(aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: aggregates.NewGormTxRunnerWithTimeout(db, cfg.Database.StatementTimeout),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		}, *set))

		var projector persist.Projector
		if clients.Neo4j != nil {
			projector = graph.NewCourseGraph(clients.Neo4j, log)
		}
		writer = persist.NewWriter(agg, projector, metrics, log)
		deps.Courses = set.Courses
		deps.Writer = writer
	}

	runner := pipeline.NewRunner(deps, pipeline.Settings{
		MaxPatchRounds: cfg.Ingest.MaxPatchRounds,
		Workers:        cfg.Ingest.Workers,
		Patch:          patch.Options{SynthesizeFeedback: cfg.Ingest.SynthesizeFeedback},
	})
	return Services{Runner: runner, Writer: writer}
}
