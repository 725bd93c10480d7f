package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// Postgres is the production TicketStore. Sequence uniqueness rides on the
// unique indexes over (number) and (issued_on, seq): a losing Insert in an
// allocation race surfaces ErrDuplicateNumber and the allocator retries with
// a freshly read maximum. Update runs SELECT ... FOR UPDATE inside a
// transaction so the mutator sees a row no concurrent writer can touch.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const ticketColumns = `id, number, owner_id, service_type, priority_class, status,
	serving_counter, served_by, issued_at, called_at, completed_at,
	estimated_wait_minutes, notes`

func (p *Postgres) Insert(ctx context.Context, t *ticket.Ticket) error {
	day, seq, err := ticket.ParseNumber(numberPrefixOf(t.Number), t.Number)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO tickets (`+ticketColumns+`, issued_on, seq)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		t.ID, t.Number, t.OwnerID, string(t.ServiceType), string(t.PriorityClass), string(t.Status),
		nullString(t.ServingCounter), nullString(t.ServedBy),
		t.IssuedAt, t.CalledAt, t.CompletedAt,
		t.EstimatedWaitMinutes, nullString(t.Notes),
		day, seq,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	return scanTicket(row)
}

func (p *Postgres) GetByNumber(ctx context.Context, number string) (*ticket.Ticket, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE number=$1`, number)
	return scanTicket(row)
}

func (p *Postgres) ListByStatus(ctx context.Context, status ticket.Status) ([]*ticket.Ticket, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE status=$1
		ORDER BY issued_at ASC, id ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list tickets by status: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (p *Postgres) ListByOwner(ctx context.Context, ownerID string, status *ticket.Status, limit int) ([]*ticket.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE owner_id=$1`
	args := []any{ownerID}
	if status != nil {
		q += ` AND status=$2`
		args = append(args, string(*status))
	}
	q += fmt.Sprintf(` ORDER BY issued_at DESC, id DESC LIMIT %d`, limit)

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets by owner: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (p *Postgres) MaxSequenceForDate(ctx context.Context, prefix string, day time.Time) (int, error) {
	var max int
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM tickets WHERE issued_on=$1
	`, ticket.DayKey(day)).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sequence for date: %w", err)
	}
	return max, nil
}

func (p *Postgres) Update(ctx context.Context, id string, mutate func(*ticket.Ticket) error) (*ticket.Ticket, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ticket update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id)
	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	if err := mutate(t); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tickets
		SET status=$2, serving_counter=$3, served_by=$4,
		    called_at=$5, completed_at=$6, notes=$7
		WHERE id=$1
	`,
		t.ID, string(t.Status),
		nullString(t.ServingCounter), nullString(t.ServedBy),
		t.CalledAt, t.CompletedAt, nullString(t.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ticket update: %w", err)
	}
	return t, nil
}

// --- row helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*ticket.Ticket, error) {
	var (
		t                        ticket.Ticket
		svc, prio, status        string
		counter, servedBy, notes sql.NullString
		calledAt, completedAt    sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Number, &t.OwnerID, &svc, &prio, &status,
		&counter, &servedBy, &t.IssuedAt, &calledAt, &completedAt,
		&t.EstimatedWaitMinutes, &notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}

	t.ServiceType = ticket.ServiceType(svc)
	t.PriorityClass = ticket.PriorityClass(prio)
	t.Status = ticket.Status(status)
	t.ServingCounter = counter.String
	t.ServedBy = servedBy.String
	t.Notes = notes.String
	if calledAt.Valid {
		v := calledAt.Time
		t.CalledAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	return &t, nil
}

func scanTickets(rows *sql.Rows) ([]*ticket.Ticket, error) {
	var out []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// numberPrefixOf strips the trailing date+sequence digits off a formatted
// number, leaving the configured prefix. Numbers always end in at least
// eleven digits (YYYYMMDD + 3-digit sequence).
func numberPrefixOf(number string) string {
	i := len(number)
	for i > 0 && number[i-1] >= '0' && number[i-1] <= '9' {
		i--
	}
	return number[:i]
}
