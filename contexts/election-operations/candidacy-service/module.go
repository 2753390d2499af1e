package candidacyservice

import (
	"log/slog"

	httpadapter "campuselect/contexts/election-operations/candidacy-service/adapters/http"
	"campuselect/contexts/election-operations/candidacy-service/adapters/memory"
	"campuselect/contexts/election-operations/candidacy-service/application/commands"
	"campuselect/contexts/election-operations/candidacy-service/application/queries"
	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	"campuselect/contexts/election-operations/candidacy-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Snapshots  ports.SnapshotRepository
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	candidateUseCase := commands.CandidateUseCase{
		Snapshots:  deps.Snapshots,
		Candidates: deps.Candidates,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	rosterUseCase := queries.RosterUseCase{
		Snapshots:  deps.Snapshots,
		Candidates: deps.Candidates,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Candidates: candidateUseCase,
			Roster:     rosterUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Candidate, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Snapshots:  store,
		Candidates: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
