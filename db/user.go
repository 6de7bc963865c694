package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"bitbucket.org/konstbyte/backend/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type UserStorage interface {
	InsertUser(*models.InsertUserOpts) (int, error)
	UpdateUserPassword(*models.User) error
	GetUserByID(userID int) (*models.User, error)
	GetUsers(*models.GetUsersOpts) (*models.UsersStruct, error)
}

const (
	insertUser = `
	INSERT
		user
	SET
		email = :email,
		password = :password,
		firstname = :firstname,
		lastname = :lastname
	`

	insertUserRoles = `
	INSERT INTO
		pivot_role_user (user_id, role_id)
	SELECT
		:user_id,
		role.id
	FROM
		role
	WHERE
		role.id IN (:role_ids)
	AND role.active = 1
	`

	updateUserPassword = `
	UPDATE
		user
	SET
		password = :password,
		remember_token = NULL
	WHERE
		user.id = :user_id AND
		user.active = 1
	`

	getUserByID = `
	SELECT
		user.id,
		user.firstname,
		user.lastname,
		user.email,
		user.password,
		user.created,
		user.updated,
		user.active,
		COALESCE(CONCAT('[',GROUP_CONCAT(JSON_OBJECT('id', role.id, 'name', role.name)),']'), '[]')
	FROM
		user
	INNER JOIN
		pivot_role_user ON (pivot_role_user.user_id = user.id)
	INNER JOIN
		role ON (role.id = pivot_role_user.role_id AND role.active = 1)
	WHERE
		user.active = 1 AND
		user.id = :user_id
	GROUP BY
		user.id
	`

	getUsers = `
	SELECT
		user.id,
		user.firstname,
		user.lastname,
		user.email,
		user.created,
		user.updated,
		user.active,
		COALESCE(CONCAT('[',GROUP_CONCAT(JSON_OBJECT('id', role.id, 'name', role.name)),']'), '[]')
	FROM
		user
	INNER JOIN
		pivot_role_user ON (pivot_role_user.user_id = user.id)
	INNER JOIN
		role ON (role.id = pivot_role_user.role_id AND role.active = 1)
	WHERE
		user.active = 1
		#FILTERS#
	GROUP BY
		user.id
	ORDER BY
		user.id DESC
	LIMIT
		:limit_from, :limit_to
	`

	countUsers = `
	SELECT
		COUNT(DISTINCT user.id)
	FROM
		user
	INNER JOIN
		pivot_role_user ON (pivot_role_user.user_id = user.id)
	INNER JOIN
		role ON (role.id = pivot_role_user.role_id AND role.active = 1)
	WHERE
		user.active = 1
		#FILTERS#
	`
)

func (db *DB) InsertUser(opts *models.InsertUserOpts) (id int, err error) {
	tx, err := db.NewTx()
	if err != nil {
		return 0, errors.Wrap(err, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = errors.Wrap(commitErr, "failed to commit transaction")
		}
	}()

	id, newErr := db.insertUserTx(tx, opts)
	if newErr != nil {
		err = newErr
		return 0, err
	}

	roleIDs := opts.Roles
	if len(roleIDs) == 0 {
		roleIDs = []int{ConstRoles.Client}
	}

	if newErr := db.insertUserRolesTx(tx, id, roleIDs); newErr != nil {
		err = newErr
		return 0, err
	}

	return id, nil
}

func (db *DB) insertUserTx(tx Tx, opts *models.InsertUserOpts) (int, error) {
	stmt, err := tx.PrepareNamed(insertUser)
	if err != nil {
		return 0, err
	}

	args := map[string]interface{}{
		"email":     opts.Email,
		"password":  opts.Password,
		"firstname": opts.Firstname,
		"lastname":  opts.Lastname,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func (db *DB) insertUserRolesTx(tx Tx, userID int, roleIDs []int) error {
	args := map[string]interface{}{
		"user_id":  userID,
		"role_ids": roleIDs,
	}

	query, nargs, err := sqlx.Named(insertUserRoles, args)
	if err != nil {
		return err
	}

	query, nargs, err = sqlx.In(query, nargs...)
	if err != nil {
		return err
	}

	query = tx.Rebind(query)

	if _, err := tx.Exec(query, nargs...); err != nil {
		return err
	}

	return nil
}

func (db *DB) UpdateUserPassword(user *models.User) error {
	stmt, err := db.PrepareNamed(updateUserPassword)
	if err != nil {
		return err
	}

	args := map[string]interface{}{
		"password": user.Password,
		"user_id":  user.ID,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if int(rowsAffected) != 1 {
		return errors.Errorf("expected %d and updated %d", 1, rowsAffected)
	}

	return nil
}

func (db *DB) GetUserByID(userID int) (*models.User, error) {
	stmt, err := db.PrepareNamed(getUserByID)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"user_id": userID,
	}

	row := stmt.QueryRow(args)

	var user models.User
	var rolesBytes []byte

	if err := row.Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.Password,
		&user.Created,
		&user.Updated,
		&user.Active,
		&rolesBytes,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(rolesBytes, &user.Roles); err != nil {
		return nil, err
	}

	return &user, nil
}

func (db *DB) GetUsers(opts *models.GetUsersOpts) (*models.UsersStruct, error) {
	var filters string
	args := make(map[string]interface{})

	if len(opts.UserIDs) > 0 {
		filters += " AND user.id IN (:user_ids)"
		args["user_ids"] = opts.UserIDs
	}
	if len(opts.RoleIDs) > 0 {
		filters += " AND role.id IN (:role_ids)"
		args["role_ids"] = opts.RoleIDs
	}
	if len(opts.Emails) > 0 {
		filters += " AND user.email IN (:emails)"
		args["emails"] = opts.Emails
	}
	if opts.CreatedFrom != "" {
		filters += " AND DATE(user.created) >= :created_from"
		args["created_from"] = opts.CreatedFrom
	}
	if opts.CreatedTo != "" {
		filters += " AND DATE(user.created) <= :created_to"
		args["created_to"] = opts.CreatedTo
	}
	if opts.LimitTo == 0 {
		opts.LimitTo = 10
	}
	args["limit_from"] = opts.LimitFrom
	args["limit_to"] = opts.LimitTo

	total, err := db.countUsers(filters, args)
	if err != nil {
		return nil, err
	}

	query := strings.ReplaceAll(getUsers, "#FILTERS#", filters)
	query, nargs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}

	query, nargs, err = sqlx.In(query, nargs...)
	if err != nil {
		return nil, err
	}

	query = db.Rebind(query)

	rows, err := db.Query(query, nargs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := models.UsersStruct{
		Total: total,
	}
	for rows.Next() {
		var user models.User
		var rolesBytes []byte
		if err := rows.Scan(
			&user.ID,
			&user.Firstname,
			&user.Lastname,
			&user.Email,
			&user.Created,
			&user.Updated,
			&user.Active,
			&rolesBytes,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(rolesBytes, &user.Roles); err != nil {
			return nil, err
		}

		users.Users = append(users.Users, user)
	}

	return &users, nil
}

func (db *DB) countUsers(filters string, args map[string]interface{}) (int, error) {
	query := strings.ReplaceAll(countUsers, "#FILTERS#", filters)
	query, nargs, err := sqlx.Named(query, args)
	if err != nil {
		return 0, err
	}

	query, nargs, err = sqlx.In(query, nargs...)
	if err != nil {
		return 0, err
	}

	query = db.Rebind(query)

	var total int
	if err := db.QueryRow(query, nargs...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}
