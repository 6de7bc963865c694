package db

import (
	"database/sql"
	"encoding/json"

	"bitbucket.org/konstbyte/backend/models"
	"github.com/pkg/errors"
)

type AuthStorage interface {
	GetUserLoginByEmail(string) (*models.User, error)
	GetUserByRememberToken(string) (*models.User, error)
	UpdateUserRememberToken(int, string) error
}

const (
	getUserLoginByEmail = `
	SELECT
		user.id,
		user.email,
		user.password,
		user.firstname,
		user.lastname,
		user.active,
		user.created,
		user.updated,
		COALESCE(CONCAT('[',GROUP_CONCAT(JSON_OBJECT('id', role.id, 'name', role.name)),']'), '[]')
	FROM user
	INNER JOIN pivot_role_user ON (pivot_role_user.user_id = user.id)
	INNER JOIN role ON (role.id = pivot_role_user.role_id AND role.active = 1)
	WHERE user.email IN (:email)
	AND user.active = 1
	GROUP BY user.id
	`

	getUserByRememberToken = `
	SELECT
		user.id,
		user.email,
		user.firstname,
		user.lastname
	FROM user
	WHERE user.active = 1
	AND user.remember_token = :remember_token
	`

	updateUserRememberToken = `
	UPDATE
		user
	SET
		remember_token = :remember_token
	WHERE
		id = :user_id
	`
)

func (db *DB) GetUserLoginByEmail(email string) (*models.User, error) {
	stmt, err := db.PrepareNamed(getUserLoginByEmail)
	if err != nil {
		return nil, errors.Wrap(err, "failed preparing statement")
	}

	args := map[string]interface{}{
		"email": email,
	}

	var user models.User
	var rolesBytes []byte

	if err := stmt.QueryRow(args).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.Firstname,
		&user.Lastname,
		&user.Active,
		&user.Created,
		&user.Updated,
		&rolesBytes,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed getting user by email")
	}

	if err := json.Unmarshal(rolesBytes, &user.Roles); err != nil {
		return nil, errors.Wrap(err, "failed unmarshaling user roles")
	}

	return &user, nil
}

func (db *DB) GetUserByRememberToken(token string) (*models.User, error) {
	stmt, err := db.PrepareNamed(getUserByRememberToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed preparing statement")
	}

	args := map[string]interface{}{
		"remember_token": token,
	}

	var user models.User

	if err := stmt.QueryRow(args).Scan(
		&user.ID,
		&user.Email,
		&user.Firstname,
		&user.Lastname,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed getting user by remember token")
	}

	return &user, nil
}

func (db *DB) UpdateUserRememberToken(userID int, token string) error {
	stmt, err := db.PrepareNamed(updateUserRememberToken)
	if err != nil {
		return errors.Wrap(err, "failed preparing statement")
	}

	args := map[string]interface{}{
		"remember_token": token,
		"user_id":        userID,
	}

	if _, err := stmt.Exec(args); err != nil {
		return errors.Wrap(err, "failed updating remember token")
	}

	return nil
}
