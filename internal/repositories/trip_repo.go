package repositories

import (
	"database/sql"
	"errors"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type TripRepo struct {
	DB *sql.DB
}

func (r TripRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripSelect = `
	SELECT t.id, d.name, t.destination_id, t.departure_date, t.departure_time, t.available_seats
	FROM trips t
	JOIN destinations d ON d.id = t.destination_id
`

func scanTrip(row *sql.Row) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(&t.ID, &t.Destination, &t.DestinationID,
		&t.DepartureDate, &t.DepartureTime, &t.AvailableSeats)
	return t, err
}

func (r TripRepo) FindByID(id int64) (models.Trip, error) {
	t, err := scanTrip(r.db().QueryRow(tripSelect+` WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, domain.NotFoundError{Resource: "trip"}
		}
		return t, domain.InternalError{Msg: "query trip", Err: err}
	}
	return t, nil
}

// FindByDestinationDateTime resolves the unique trip for a destination name,
// departure date (YYYY-MM-DD) and departure time (HH:MM).
func (r TripRepo) FindByDestinationDateTime(destination, date, timeOfDay string) (models.Trip, error) {
	t, err := scanTrip(r.db().QueryRow(
		tripSelect+` WHERE d.name = ? AND t.departure_date = ? AND t.departure_time = ?`,
		destination, date, timeOfDay))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, domain.NotFoundError{Resource: "trip"}
		}
		return t, domain.InternalError{Msg: "query trip", Err: err}
	}
	return t, nil
}

func (r TripRepo) FindAll() ([]models.Trip, error) {
	rows, err := r.db().Query(tripSelect + ` ORDER BY t.departure_date, t.departure_time`)
	if err != nil {
		return nil, domain.InternalError{Msg: "query trips", Err: err}
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ID, &t.Destination, &t.DestinationID,
			&t.DepartureDate, &t.DepartureTime, &t.AvailableSeats); err != nil {
			return nil, domain.InternalError{Msg: "scan trip", Err: err}
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate trips", Err: err}
	}
	return trips, nil
}

func (r TripRepo) Save(t models.Trip) (models.Trip, error) {
	res, err := r.db().Exec(`
		INSERT INTO trips (destination_id, departure_date, departure_time, available_seats)
		VALUES (?, ?, ?, ?)
	`, t.DestinationID, t.DepartureDate, t.DepartureTime, t.AvailableSeats)
	if err != nil {
		return t, domain.InternalError{Msg: "insert trip", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return t, domain.InternalError{Msg: "trip insert id", Err: err}
	}
	t.ID = id
	return t, nil
}

// UpdateAvailableSeats persists the post-commit seat count.
func (r TripRepo) UpdateAvailableSeats(tripID int64, availableSeats int) error {
	res, err := r.db().Exec(`UPDATE trips SET available_seats = ? WHERE id = ?`, availableSeats, tripID)
	if err != nil {
		return domain.InternalError{Msg: "update trip seats", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "update trip seats", Err: err}
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}
