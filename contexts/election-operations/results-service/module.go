package resultsservice

import (
	"log/slog"

	httpadapter "campuselect/contexts/election-operations/results-service/adapters/http"
	"campuselect/contexts/election-operations/results-service/adapters/memory"
	"campuselect/contexts/election-operations/results-service/application/queries"
	"campuselect/contexts/election-operations/results-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	ReadModel ports.ResultsReadModel
	Cache     ports.ResultCache
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resultsUseCase := queries.ResultsUseCase{
		ReadModel: deps.ReadModel,
		Cache:     deps.Cache,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		ReadModel: store,
		Cache:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
