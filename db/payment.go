package db

import (
	"database/sql"

	"bitbucket.org/konstbyte/backend/models"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// ErrAlreadyReconciled signals that a payment row already exists for the
// processor transaction id. Duplicate webhook deliveries land here and must
// be acknowledged without any further mutation.
var ErrAlreadyReconciled = errors.New("payment already reconciled")

const mysqlErrDuplicateEntry = 1062

type PaymentStorage interface {
	GetPaymentByOrderID(orderID int) (*models.Payment, error)
	GetPaymentByStripeID(stripeID string) (*models.Payment, error)
}

const (
	insertPayment = `
	INSERT
		payment
	SET
		order_id = :order_id,
		stripe_id = :stripe_id,
		amount = :amount
	`

	getPaymentByOrderID = `
	SELECT
		payment.id,
		payment.order_id,
		payment.stripe_id,
		payment.amount,
		payment.created
	FROM
		payment
	WHERE
		payment.order_id = :order_id
	ORDER BY
		payment.id DESC
	LIMIT 1
	`

	getPaymentByStripeID = `
	SELECT
		payment.id,
		payment.order_id,
		payment.stripe_id,
		payment.amount,
		payment.created
	FROM
		payment
	WHERE
		payment.stripe_id = :stripe_id
	`
)

func (db *DB) insertPaymentTx(tx Tx, orderID int, stripeID string, amount int) error {
	stmt, err := tx.PrepareNamed(insertPayment)
	if err != nil {
		return err
	}

	args := map[string]interface{}{
		"order_id":  orderID,
		"stripe_id": stripeID,
		"amount":    amount,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return ErrAlreadyReconciled
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if int(rowsAffected) != 1 {
		return errors.Errorf("expected %d and inserted %d", 1, rowsAffected)
	}

	return nil
}

func (db *DB) GetPaymentByOrderID(orderID int) (*models.Payment, error) {
	stmt, err := db.PrepareNamed(getPaymentByOrderID)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"order_id": orderID,
	}

	var payment models.Payment

	row := stmt.QueryRow(args)
	if err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.StripeID,
		&payment.Amount,
		&payment.Created,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &payment, nil
}

func (db *DB) GetPaymentByStripeID(stripeID string) (*models.Payment, error) {
	stmt, err := db.PrepareNamed(getPaymentByStripeID)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"stripe_id": stripeID,
	}

	var payment models.Payment

	row := stmt.QueryRow(args)
	if err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.StripeID,
		&payment.Amount,
		&payment.Created,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &payment, nil
}
