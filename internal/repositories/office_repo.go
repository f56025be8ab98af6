package repositories

import (
	"database/sql"
	"errors"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type OfficeRepo struct {
	DB *sql.DB
}

func (r OfficeRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r OfficeRepo) FindByID(id int64) (models.Office, error) {
	var o models.Office
	err := r.db().QueryRow(`
		SELECT id, name, location
		FROM offices
		WHERE id = ?
	`, id).Scan(&o.ID, &o.Name, &o.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, domain.NotFoundError{Resource: "office"}
		}
		return o, domain.InternalError{Msg: "query office", Err: err}
	}
	return o, nil
}

func (r OfficeRepo) FindAll() ([]models.Office, error) {
	rows, err := r.db().Query(`SELECT id, name, location FROM offices ORDER BY id`)
	if err != nil {
		return nil, domain.InternalError{Msg: "query offices", Err: err}
	}
	defer rows.Close()

	offices := []models.Office{}
	for rows.Next() {
		var o models.Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Location); err != nil {
			return nil, domain.InternalError{Msg: "scan office", Err: err}
		}
		offices = append(offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate offices", Err: err}
	}
	return offices, nil
}

func (r OfficeRepo) Save(o models.Office) (models.Office, error) {
	res, err := r.db().Exec(`INSERT INTO offices (name, location) VALUES (?, ?)`, o.Name, o.Location)
	if err != nil {
		return o, domain.InternalError{Msg: "insert office", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return o, domain.InternalError{Msg: "office insert id", Err: err}
	}
	o.ID = id
	return o, nil
}
