package repositories

import (
	"database/sql"
	"errors"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type ClientRepo struct {
	DB *sql.DB
}

func (r ClientRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ClientRepo) FindByName(name string) (models.Client, error) {
	var c models.Client
	err := r.db().QueryRow(`SELECT id, name FROM clients WHERE name = ?`, name).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, domain.NotFoundError{Resource: "client"}
		}
		return c, domain.InternalError{Msg: "query client", Err: err}
	}
	return c, nil
}

func (r ClientRepo) Save(c models.Client) (models.Client, error) {
	res, err := r.db().Exec(`INSERT INTO clients (name) VALUES (?)`, c.Name)
	if err != nil {
		return c, domain.InternalError{Msg: "insert client", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return c, domain.InternalError{Msg: "client insert id", Err: err}
	}
	c.ID = id
	return c, nil
}
