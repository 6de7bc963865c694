package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"bitbucket.org/konstbyte/backend/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type OrderStorage interface {
	InsertOrder(buyerID int, artworkID int, amount int) (*models.Order, error)
	GetOrderByID(orderID int) (*models.Order, error)
	GetOrders(opts *models.GetOrdersOpts) (*models.OrdersStruct, error)
	MarkOrderPaid(orderID int, stripeID string, amount int) error
}

// DATE_FORMAT layout producing RFC3339 timestamps inside JSON_OBJECT columns.
const mysqlISO8601 = `%Y-%m-%dT%H:%i:%sZ`

const (
	insertOrder = `
	INSERT
		orders
	SET
		buyer_id = :buyer_id,
		artwork_id = :artwork_id,
		amount = :amount,
		status = :status
	`

	getOrderByID = `
	SELECT
		orders.id,
		orders.amount,
		orders.status,
		orders.created,
		orders.updated,
		buyer.id,
		buyer.firstname,
		buyer.lastname,
		buyer.email,
		artwork.id,
		artwork.title,
		artwork.category,
		artwork.price,
		artwork.image_url,
		COALESCE(
			(
				SELECT
					JSON_OBJECT(
						'id', payment.id,
						'order_id', payment.order_id,
						'stripe_id', payment.stripe_id,
						'amount', payment.amount,
						'created', DATE_FORMAT(payment.created, :iso8601)
					)
				FROM
					payment
				WHERE
					payment.order_id = orders.id
				ORDER BY
					payment.id DESC
				LIMIT 1
			), '{}'
		)
	FROM
		orders
	INNER JOIN
		user AS buyer ON (buyer.id = orders.buyer_id)
	INNER JOIN
		artwork ON (artwork.id = orders.artwork_id)
	WHERE
		orders.id = :order_id
	`

	getOrders = `
	SELECT
		orders.id,
		orders.amount,
		orders.status,
		orders.created,
		orders.updated,
		artwork.id,
		artwork.title,
		artwork.category,
		artwork.image_url,
		COALESCE(
			(
				SELECT
					JSON_OBJECT(
						'id', payment.id,
						'order_id', payment.order_id,
						'stripe_id', payment.stripe_id,
						'amount', payment.amount,
						'created', DATE_FORMAT(payment.created, :iso8601)
					)
				FROM
					payment
				WHERE
					payment.order_id = orders.id
				ORDER BY
					payment.id DESC
				LIMIT 1
			), '{}'
		)
	FROM
		orders
	INNER JOIN
		artwork ON (artwork.id = orders.artwork_id)
	WHERE
		1 = 1
		#FILTERS#
	ORDER BY
		orders.id DESC
	LIMIT
		:limit_from, :limit_to
	`

	countOrders = `
	SELECT
		COUNT(orders.id)
	FROM
		orders
	WHERE
		1 = 1
		#FILTERS#
	`

	updateOrderStatusPaid = `
	UPDATE
		orders
	SET
		status = :status,
		updated = current_timestamp()
	WHERE
		orders.id = :order_id
	`
)

func (db *DB) InsertOrder(buyerID int, artworkID int, amount int) (*models.Order, error) {
	stmt, err := db.PrepareNamed(insertOrder)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"buyer_id":   buyerID,
		"artwork_id": artworkID,
		"amount":     amount,
		"status":     ConstOrderStatuses.Pending,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if int(rowsAffected) != 1 {
		return nil, errors.Errorf("expected %d and inserted %d", 1, rowsAffected)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Order{
		ID:      int(id),
		Buyer:   &models.User{ID: buyerID},
		Artwork: &models.Artwork{ID: artworkID},
		Amount:  amount,
		Status:  ConstOrderStatuses.Pending,
	}, nil
}

func (db *DB) GetOrderByID(orderID int) (*models.Order, error) {
	stmt, err := db.PrepareNamed(getOrderByID)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"order_id": orderID,
		"iso8601":  mysqlISO8601,
	}

	row := stmt.QueryRow(args)

	var order models.Order
	var buyer models.User
	var artwork models.Artwork
	var paymentBytes []byte

	if err := row.Scan(
		&order.ID,
		&order.Amount,
		&order.Status,
		&order.Created,
		&order.Updated,
		&buyer.ID,
		&buyer.Firstname,
		&buyer.Lastname,
		&buyer.Email,
		&artwork.ID,
		&artwork.Title,
		&artwork.Category,
		&artwork.Price,
		&artwork.ImageURL,
		&paymentBytes,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	order.Buyer = &buyer
	order.Artwork = &artwork

	payment, err := unmarshalPayment(paymentBytes)
	if err != nil {
		return nil, err
	}
	order.Payment = payment

	return &order, nil
}

func (db *DB) GetOrders(opts *models.GetOrdersOpts) (*models.OrdersStruct, error) {
	var filters string
	args := make(map[string]interface{})

	if len(opts.BuyerIDs) > 0 {
		filters += " AND orders.buyer_id IN (:buyer_ids)"
		args["buyer_ids"] = opts.BuyerIDs
	}
	if len(opts.Statuses) > 0 {
		filters += " AND orders.status IN (:statuses)"
		args["statuses"] = opts.Statuses
	}
	if opts.CreatedFrom != "" {
		filters += " AND DATE(orders.created) >= :created_from"
		args["created_from"] = opts.CreatedFrom
	}
	if opts.CreatedTo != "" {
		filters += " AND DATE(orders.created) <= :created_to"
		args["created_to"] = opts.CreatedTo
	}
	if opts.LimitTo == 0 {
		opts.LimitTo = 10
	}
	args["limit_from"] = opts.LimitFrom
	args["limit_to"] = opts.LimitTo
	args["iso8601"] = mysqlISO8601

	total, err := db.countOrders(filters, args)
	if err != nil {
		return nil, err
	}

	query := strings.ReplaceAll(getOrders, "#FILTERS#", filters)
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

	orders := models.OrdersStruct{
		Total: total,
	}
	for rows.Next() {
		var order models.Order
		var artwork models.Artwork
		var paymentBytes []byte
		if err := rows.Scan(
			&order.ID,
			&order.Amount,
			&order.Status,
			&order.Created,
			&order.Updated,
			&artwork.ID,
			&artwork.Title,
			&artwork.Category,
			&artwork.ImageURL,
			&paymentBytes,
		); err != nil {
			return nil, err
		}

		order.Artwork = &artwork

		payment, err := unmarshalPayment(paymentBytes)
		if err != nil {
			return nil, err
		}
		order.Payment = payment

		orders.Orders = append(orders.Orders, order)
	}

	return &orders, nil
}

func (db *DB) countOrders(filters string, args map[string]interface{}) (int, error) {
	query := strings.ReplaceAll(countOrders, "#FILTERS#", filters)
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

// MarkOrderPaid records the payment receipt and flips the order to paid in a
// single transaction. The unique key on payment.stripe_id makes redelivered
// webhook events collapse to one winner inside the store: the loser gets
// ErrAlreadyReconciled and must treat it as a no-op.
func (db *DB) MarkOrderPaid(orderID int, stripeID string, amount int) (err error) {
	tx, err := db.NewTx()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	// The commit error must surface: an acked webhook is never redelivered,
	// so a swallowed COMMIT failure would leave the order pending forever.
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = errors.Wrap(commitErr, "failed to commit transaction")
		}
	}()

	if newErr := db.insertPaymentTx(tx, orderID, stripeID, amount); newErr != nil {
		err = newErr
		return err
	}

	if newErr := db.updateOrderStatusPaidTx(tx, orderID); newErr != nil {
		err = newErr
		return err
	}

	return nil
}

func (db *DB) updateOrderStatusPaidTx(tx Tx, orderID int) error {
	stmt, err := tx.PrepareNamed(updateOrderStatusPaid)
	if err != nil {
		return err
	}

	args := map[string]interface{}{
		"status":   ConstOrderStatuses.Paid,
		"order_id": orderID,
	}

	if _, err := stmt.Exec(args); err != nil {
		return err
	}

	return nil
}

func unmarshalPayment(paymentBytes []byte) (*models.Payment, error) {
	var payment models.Payment
	if err := json.Unmarshal(paymentBytes, &payment); err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}
