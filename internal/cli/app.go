package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"
	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreybell91/ignite/internal/application"
	"github.com/andreybell91/ignite/internal/config"
	"github.com/andreybell91/ignite/internal/domain"
	"github.com/andreybell91/ignite/internal/infrastructure/dbosworkflows"
	"github.com/andreybell91/ignite/internal/infrastructure/goworkflows"
	"github.com/andreybell91/ignite/internal/infrastructure/metrics"
	"github.com/andreybell91/ignite/internal/infrastructure/sqlite"
	"github.com/andreybell91/ignite/internal/infrastructure/syncworkflow"
)

// App wires the repositories, the selected workflow engine and the
// application services for one CLI invocation.
type App struct {
	Config      config.Config
	Logger      hclog.Logger
	Codec       domain.DescriptorCodec
	Registry    *prometheus.Registry
	Statistics  *metrics.Statistics
	Nodes       *application.NodeService
	Deployments *application.DeploymentService

	db      *sql.DB
	closers []func() error
}

// OpenApp opens the database and starts the configured workflow engine.
// Close releases both.
func OpenApp(ctx context.Context, cfg config.Config, logger hclog.Logger, codec domain.DescriptorCodec) (*App, error) {
	db, err := sqlite.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Codec:    codec,
		Registry: prometheus.NewRegistry(),
		db:       db,
	}
	app.closers = append(app.closers, db.Close)

	stats, err := metrics.NewStatistics(app.Registry, nil)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Statistics = stats

	nodeRepo := &sqlite.NodeRepo{DB: db}
	deploymentRepo := &sqlite.DeploymentRepo{DB: db, Codec: codec}
	wf := &domain.DeploymentWorkflow{
		Deployments: deploymentRepo,
		Nodes:       nodeRepo,
		Statistics:  stats,
	}

	runner, err := app.startEngine(ctx, wf)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("start %s engine: %w", cfg.Engine, err)
	}

	app.Nodes = &application.NodeService{Nodes: nodeRepo}
	app.Deployments = &application.DeploymentService{
		Deployments:   deploymentRepo,
		Decisions:     &sqlite.DecisionRecordRepo{DB: db},
		Orchestration: &application.OrchestrationService{Workflow: runner},
		Statistics:    stats,
		Logger:        logger.Named("deploy"),
	}
	return app, nil
}

func (a *App) startEngine(ctx context.Context, wf *domain.DeploymentWorkflow) (domain.DeploymentRunner, error) {
	switch a.Config.Engine {
	case config.EngineGoWorkflows:
		b := wfsqlite.NewSqliteBackend(a.Config.Database + ".workflows")
		w := worker.New(b, nil)
		engine := &goworkflows.Engine{Worker: w, Client: client.New(b)}
		runner, err := engine.DeploymentRunner(wf)
		if err != nil {
			return nil, err
		}
		wctx, cancel := context.WithCancel(ctx)
		if err := w.Start(wctx); err != nil {
			cancel()
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			cancel()
			return w.WaitForCompletion()
		})
		return runner, nil

	case config.EngineDBOS:
		dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
			AppName:     "servicegrid",
			DatabaseURL: a.Config.DBOSDatabaseURL,
		})
		if err != nil {
			return nil, err
		}
		runner, err := (&dbosworkflows.Engine{DBOSCtx: dbosCtx}).DeploymentRunner(wf)
		if err != nil {
			return nil, err
		}
		if err := dbos.Launch(dbosCtx); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			dbos.Shutdown(dbosCtx, 5*time.Second)
			return nil
		})
		return runner, nil

	default:
		return (&syncworkflow.Engine{}).DeploymentRunner(wf)
	}
}

// RestoreStatistics re-registers every deployed service that enables
// statistics. The registry lives in process memory, so a fresh process
// starts empty.
func (a *App) RestoreStatistics(ctx context.Context) (int, error) {
	deps, err := a.Deployments.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range deps {
		if !d.Descriptor.StatisticsEnabled() {
			continue
		}
		if err := a.Statistics.Register(d.Name()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Close stops the engine and closes the database, in reverse order of
// opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
