package repositories

import (
	"database/sql"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type ReservedSeatRepo struct {
	DB *sql.DB
}

func (r ReservedSeatRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ListByTripID returns every committed seat row for a trip, with the
// occupying client's name joined in.
func (r ReservedSeatRepo) ListByTripID(tripID int64) ([]models.ReservedSeat, error) {
	rows, err := r.db().Query(`
		SELECT rs.id, rs.trip_id, rs.employee_id, rs.seat_number, rs.client_id, c.name
		FROM reserved_seats rs
		JOIN clients c ON c.id = rs.client_id
		WHERE rs.trip_id = ?
		ORDER BY rs.seat_number
	`, tripID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query reserved seats", Err: err}
	}
	defer rows.Close()

	seats := []models.ReservedSeat{}
	for rows.Next() {
		var s models.ReservedSeat
		if err := rows.Scan(&s.ID, &s.TripID, &s.EmployeeID, &s.SeatNumber, &s.ClientID, &s.ClientName); err != nil {
			return nil, domain.InternalError{Msg: "scan reserved seat", Err: err}
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate reserved seats", Err: err}
	}
	return seats, nil
}

// Save inserts one seat row. The (trip_id, seat_number) unique key rejects
// a double assignment at the storage level as well.
func (r ReservedSeatRepo) Save(s models.ReservedSeat) (models.ReservedSeat, error) {
	res, err := r.db().Exec(`
		INSERT INTO reserved_seats (trip_id, employee_id, seat_number, client_id)
		VALUES (?, ?, ?, ?)
	`, s.TripID, s.EmployeeID, s.SeatNumber, s.ClientID)
	if err != nil {
		return s, domain.InternalError{Msg: "insert reserved seat", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return s, domain.InternalError{Msg: "reserved seat insert id", Err: err}
	}
	s.ID = id
	return s, nil
}

func (r ReservedSeatRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM reserved_seats WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "delete reserved seat", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "delete reserved seat", Err: err}
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "reserved seat"}
	}
	return nil
}
