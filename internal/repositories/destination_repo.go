package repositories

import (
	"database/sql"
	"errors"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type DestinationRepo struct {
	DB *sql.DB
}

func (r DestinationRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r DestinationRepo) FindByID(id int64) (models.Destination, error) {
	var d models.Destination
	err := r.db().QueryRow(`SELECT id, name FROM destinations WHERE id = ?`, id).
		Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, domain.NotFoundError{Resource: "destination"}
		}
		return d, domain.InternalError{Msg: "query destination", Err: err}
	}
	return d, nil
}

func (r DestinationRepo) FindByName(name string) (models.Destination, error) {
	var d models.Destination
	err := r.db().QueryRow(`SELECT id, name FROM destinations WHERE name = ?`, name).
		Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, domain.NotFoundError{Resource: "destination"}
		}
		return d, domain.InternalError{Msg: "query destination", Err: err}
	}
	return d, nil
}

func (r DestinationRepo) FindAll() ([]models.Destination, error) {
	rows, err := r.db().Query(`SELECT id, name FROM destinations ORDER BY name`)
	if err != nil {
		return nil, domain.InternalError{Msg: "query destinations", Err: err}
	}
	defer rows.Close()

	dests := []models.Destination{}
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, domain.InternalError{Msg: "scan destination", Err: err}
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate destinations", Err: err}
	}
	return dests, nil
}

func (r DestinationRepo) Save(d models.Destination) (models.Destination, error) {
	res, err := r.db().Exec(`INSERT INTO destinations (name) VALUES (?)`, d.Name)
	if err != nil {
		return d, domain.InternalError{Msg: "insert destination", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return d, domain.InternalError{Msg: "destination insert id", Err: err}
	}
	d.ID = id
	return d, nil
}
