package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/internal/queue"
	"github.com/bajehapp/bajeh_backend/internal/service/board"
	"github.com/bajehapp/bajeh_backend/internal/service/dispatch"
	"github.com/bajehapp/bajeh_backend/internal/store"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideHub,
		ProvidePublisher,
		ProvideAverages,
		ProvideDispatchService,
		ProvideBoardService,
	),
)

func ProvideHub(logger *slog.Logger) *fanout.Hub {
	return fanout.NewHub(logger)
}

// ProvidePublisher fans every event out to the in-process hub (feeding the
// SSE streams of this node) and to NATS (feeding every other node).
func ProvidePublisher(hub *fanout.Hub, nc *nats.Conn) fanout.Publisher {
	return fanout.Multi{hub, fanout.NewNatsPublisher(nc)}
}

func ProvideAverages(rdb *redis.Client, cfg *config.Config) *queue.Averages {
	return queue.NewAverages(rdb, float64(cfg.Ticketing.AverageServiceMinutes))
}

func ProvideDispatchService(
	st store.TicketStore,
	pub fanout.Publisher,
	avgs *queue.Averages,
	cfg *config.Config,
	logger *slog.Logger,
) dispatch.Service {
	return dispatch.New(st, pub, identity.DefaultPriorityPolicy, avgs, cfg.Ticketing, logger)
}

func ProvideBoardService(rdb *redis.Client, pub fanout.Publisher, logger *slog.Logger) board.Service {
	return board.New(rdb, pub, logger)
}
