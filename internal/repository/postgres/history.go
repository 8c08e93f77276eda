package postgresrepo

import (
	"context"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepo appends issued tickets and payment transactions and reads them
// back by user. Records are never updated or deleted.
type HistoryRepo struct {
	pool *pgxpool.Pool
	db   DB
}

// With binds the repo to an open transaction.
func (r *HistoryRepo) With(db DB) *HistoryRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HistoryRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// AppendTickets inserts one row per issued ticket in a single batch.
func (r *HistoryRepo) AppendTickets(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgresrepo.HistoryRepo.AppendTickets"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(
			`INSERT INTO tickets
			   (id, number, user_id, passenger, document, airline, airline_name,
			    flight_number, origin, destination, flight_date, departure_time,
			    duration, aircraft, seat, price, auth_code, issued_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			t.ID, t.Number, t.UserID, t.Passenger, t.Document, t.Airline, t.AirlineName,
			t.FlightNumber, t.Origin, t.Destination, t.Date, t.DepartureTime,
			t.Duration, t.Aircraft, t.Seat, t.Price, t.AuthCode, t.IssuedAt,
		)
	}

	br := db.SendBatch(ctx, batch)
	defer br.Close()

	for range tickets {
		if _, err := br.Exec(); err != nil {
			return wrapDBErr(op, err)
		}
	}

	return nil
}

// AppendTransaction records a purchase or a denied payment attempt.
func (r *HistoryRepo) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	const op = "postgresrepo.HistoryRepo.AppendTransaction"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO transactions
		   (id, user_id, flight_code, flight_date, seats, amount, status,
		    auth_code, card_last_four, ticket_numbers, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		tx.ID, tx.UserID, tx.FlightCode, tx.Date, tx.Seats, tx.Amount, tx.Status,
		tx.AuthCode, tx.CardLastFour, tx.TicketNumbers, tx.CreatedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// TicketsByUser returns a user's tickets, most recent first.
func (r *HistoryRepo) TicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const op = "postgresrepo.HistoryRepo.TicketsByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, number, user_id, passenger, document, airline, airline_name,
		        flight_number, origin, destination, flight_date, departure_time,
		        duration, aircraft, seat, price, auth_code, issued_at
		   FROM tickets
		  WHERE user_id = $1
		  ORDER BY issued_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID, &t.Number, &t.UserID, &t.Passenger, &t.Document, &t.Airline, &t.AirlineName,
			&t.FlightNumber, &t.Origin, &t.Destination, &t.Date, &t.DepartureTime,
			&t.Duration, &t.Aircraft, &t.Seat, &t.Price, &t.AuthCode, &t.IssuedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// TransactionsByUser returns a user's payment history, most recent first.
func (r *HistoryRepo) TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	const op = "postgresrepo.HistoryRepo.TransactionsByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, user_id, flight_code, flight_date, seats, amount, status,
		        auth_code, card_last_four, ticket_numbers, created_at
		   FROM transactions
		  WHERE user_id = $1
		  ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.FlightCode, &t.Date, &t.Seats, &t.Amount, &t.Status,
			&t.AuthCode, &t.CardLastFour, &t.TicketNumbers, &t.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
