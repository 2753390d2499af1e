package ballotservice

import (
	"log/slog"

	httpadapter "campuselect/contexts/election-operations/ballot-service/adapters/http"
	"campuselect/contexts/election-operations/ballot-service/adapters/memory"
	"campuselect/contexts/election-operations/ballot-service/application/commands"
	"campuselect/contexts/election-operations/ballot-service/application/queries"
	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	"campuselect/contexts/election-operations/ballot-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Snapshots     ports.SnapshotRepository
	Ballots       ports.BallotRepository
	Participation ports.ParticipationStore
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ballotUseCase := commands.BallotUseCase{
		Snapshots:     deps.Snapshots,
		Ballots:       deps.Ballots,
		Participation: deps.Participation,
		Outbox:        deps.Outbox,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Logger:        deps.Logger,
	}
	statusUseCase := queries.BallotStatusUseCase{
		Snapshots:     deps.Snapshots,
		Ballots:       deps.Ballots,
		Participation: deps.Participation,
		Clock:         deps.Clock,
		Logger:        deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballots: ballotUseCase,
			Status:  statusUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Ballot, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Snapshots:     store,
		Ballots:       store,
		Participation: store,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
