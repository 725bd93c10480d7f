package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	svcemail "github.com/bajehapp/bajeh_backend/pkg/email"
	svcsms "github.com/bajehapp/bajeh_backend/pkg/sms"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	NC        *nats.Conn
	Directory identity.Directory
	SMS       *svcsms.Client
	Email     *svcemail.Client
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startNotifyWorker(p.NC, p.Directory, p.SMS, p.Email)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// notify_worker
// ---------------------------------------------------------------------------

// startNotifyWorker listens for called tickets and pings the owner over SMS
// and email, best effort. The subject wildcard covers every customer
// audience; called events are never published to staff subjects.
func startNotifyWorker(nc *nats.Conn, dir identity.Directory, smsCli *svcsms.Client, emailCli *svcemail.Client) {
	subject := fanout.Subject(fanout.EventTicketCalled, "*")
	_, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev fanout.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("notify_worker: malformed event", "subject", msg.Subject, "err", err)
			return
		}
		if ev.Ticket == nil {
			return
		}

		ctx := context.Background()

		account, err := dir.ResolveAccount(ctx, ev.Ticket.OwnerID)
		if err != nil {
			slog.Warn("notify_worker: owner lookup failed", "owner_id", ev.Ticket.OwnerID, "err", err)
			return
		}

		if account.Phone != "" && smsCli.IsEnabled() {
			phone, err := svcsms.NormalizePhone(account.Phone)
			if err != nil {
				slog.Warn("notify_worker: bad phone number", "owner_id", account.ID, "err", err)
			} else if err := smsCli.SendTicketCalled(ctx, phone, ev.Ticket.Number, ev.Ticket.ServingCounter); err != nil {
				slog.Warn("notify_worker: sms failed", "owner_id", account.ID, "err", err)
			}
		}

		if account.Email != "" && emailCli.IsEnabled() {
			m := svcemail.BuildTicketCalledEmail(svcemail.TicketCalledData{
				Email:        account.Email,
				TicketNumber: ev.Ticket.Number,
				Counter:      ev.Ticket.ServingCounter,
				ServiceType:  string(ev.Ticket.ServiceType),
			})
			if err := emailCli.Send(ctx, m); err != nil {
				slog.Warn("notify_worker: email failed", "owner_id", account.ID, "err", err)
			}
		}
	})
	if err != nil {
		slog.Error("notify_worker: subscribe failed", "subject", subject, "err", err)
	}
}
