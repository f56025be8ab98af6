package repositories

import (
	"database/sql"
	"errors"

	intconfig "transport/internal/config"
	"transport/internal/domain"
	"transport/internal/domain/models"
)

type EmployeeRepo struct {
	DB *sql.DB
}

func (r EmployeeRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r EmployeeRepo) FindByID(id int64) (models.Employee, error) {
	var e models.Employee
	err := r.db().QueryRow(`
		SELECT id, username, password_hash, office_id
		FROM employees
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Username, &e.PasswordHash, &e.OfficeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, domain.NotFoundError{Resource: "employee"}
		}
		return e, domain.InternalError{Msg: "query employee", Err: err}
	}
	return e, nil
}

func (r EmployeeRepo) FindByUsername(username string) (models.Employee, error) {
	var e models.Employee
	err := r.db().QueryRow(`
		SELECT id, username, password_hash, office_id
		FROM employees
		WHERE username = ?
	`, username).Scan(&e.ID, &e.Username, &e.PasswordHash, &e.OfficeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, domain.NotFoundError{Resource: "employee"}
		}
		return e, domain.InternalError{Msg: "query employee", Err: err}
	}
	return e, nil
}

func (r EmployeeRepo) Save(e models.Employee) (models.Employee, error) {
	res, err := r.db().Exec(`
		INSERT INTO employees (username, password_hash, office_id)
		VALUES (?, ?, ?)
	`, e.Username, e.PasswordHash, e.OfficeID)
	if err != nil {
		return e, domain.InternalError{Msg: "insert employee", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return e, domain.InternalError{Msg: "employee insert id", Err: err}
	}
	e.ID = id
	return e, nil
}
