package db

import (
	"database/sql"
	"strings"

	"bitbucket.org/konstbyte/backend/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type ArtworkStorage interface {
	InsertArtwork(ownerID int, opts *models.InsertArtworkOpts) (int, error)
	GetArtworkByID(artworkID int) (*models.Artwork, error)
	GetArtworks(opts *models.GetArtworksOpts) (*models.ArtworksStruct, error)
	UpdateArtwork(artworkID int, opts *models.UpdateArtworkOpts) error
}

const (
	insertArtwork = `
	INSERT
		artwork
	SET
		title = :title,
		description = :description,
		category = :category,
		price = :price,
		image_url = :image_url,
		owner_id = :owner_id,
		published = :published
	`

	getArtworkByID = `
	SELECT
		artwork.id,
		artwork.title,
		artwork.description,
		artwork.category,
		artwork.price,
		artwork.image_url,
		artwork.published,
		artwork.created,
		artwork.updated,
		owner.id,
		owner.firstname,
		owner.lastname,
		owner.email
	FROM
		artwork
	INNER JOIN
		user AS owner ON (owner.id = artwork.owner_id)
	WHERE
		artwork.active = 1 AND
		artwork.id = :artwork_id
	`

	getArtworks = `
	SELECT
		artwork.id,
		artwork.title,
		artwork.description,
		artwork.category,
		artwork.price,
		artwork.image_url,
		artwork.published,
		artwork.created,
		artwork.updated,
		owner.id,
		owner.firstname,
		owner.lastname
	FROM
		artwork
	INNER JOIN
		user AS owner ON (owner.id = artwork.owner_id)
	WHERE
		artwork.active = 1
		#FILTERS#
	ORDER BY
		artwork.id DESC
	LIMIT
		:limit_from, :limit_to
	`

	countArtworks = `
	SELECT
		COUNT(artwork.id)
	FROM
		artwork
	WHERE
		artwork.active = 1
		#FILTERS#
	`

	updateArtwork = `
	UPDATE
		artwork
	SET
		title = :title,
		description = :description,
		category = :category,
		price = :price,
		published = :published,
		updated = current_timestamp()
	WHERE
		artwork.active = 1 AND
		artwork.id = :artwork_id
	`
)

func (db *DB) InsertArtwork(ownerID int, opts *models.InsertArtworkOpts) (int, error) {
	stmt, err := db.PrepareNamed(insertArtwork)
	if err != nil {
		return 0, err
	}

	args := map[string]interface{}{
		"title":       opts.Title,
		"description": opts.Description,
		"category":    opts.Category,
		"price":       opts.Price,
		"image_url":   opts.ImageURL,
		"owner_id":    ownerID,
		"published":   opts.Published,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if int(rowsAffected) != 1 {
		return 0, errors.Errorf("expected %d and inserted %d", 1, rowsAffected)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func (db *DB) GetArtworkByID(artworkID int) (*models.Artwork, error) {
	stmt, err := db.PrepareNamed(getArtworkByID)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"artwork_id": artworkID,
	}

	row := stmt.QueryRow(args)

	var artwork models.Artwork
	var owner models.User

	if err := row.Scan(
		&artwork.ID,
		&artwork.Title,
		&artwork.Description,
		&artwork.Category,
		&artwork.Price,
		&artwork.ImageURL,
		&artwork.Published,
		&artwork.Created,
		&artwork.Updated,
		&owner.ID,
		&owner.Firstname,
		&owner.Lastname,
		&owner.Email,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	artwork.Owner = &owner

	return &artwork, nil
}

func (db *DB) GetArtworks(opts *models.GetArtworksOpts) (*models.ArtworksStruct, error) {
	var filters string
	args := make(map[string]interface{})

	filters += " AND artwork.published = 1"
	if opts.Category != "" {
		filters += " AND artwork.category = :category"
		args["category"] = opts.Category
	}
	if len(opts.OwnerIDs) > 0 {
		filters += " AND artwork.owner_id IN (:owner_ids)"
		args["owner_ids"] = opts.OwnerIDs
	}
	if opts.PriceFrom > 0 {
		filters += " AND artwork.price >= :price_from"
		args["price_from"] = opts.PriceFrom
	}
	if opts.PriceTo > 0 {
		filters += " AND artwork.price <= :price_to"
		args["price_to"] = opts.PriceTo
	}
	if opts.LimitTo == 0 {
		opts.LimitTo = 10
	}
	args["limit_from"] = opts.LimitFrom
	args["limit_to"] = opts.LimitTo

	total, err := db.countArtworks(filters, args)
	if err != nil {
		return nil, err
	}

	query := strings.ReplaceAll(getArtworks, "#FILTERS#", filters)
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

	artworks := models.ArtworksStruct{
		Total: total,
	}
	for rows.Next() {
		var artwork models.Artwork
		var owner models.User
		if err := rows.Scan(
			&artwork.ID,
			&artwork.Title,
			&artwork.Description,
			&artwork.Category,
			&artwork.Price,
			&artwork.ImageURL,
			&artwork.Published,
			&artwork.Created,
			&artwork.Updated,
			&owner.ID,
			&owner.Firstname,
			&owner.Lastname,
		); err != nil {
			return nil, err
		}

		artwork.Owner = &owner
		artworks.Artworks = append(artworks.Artworks, artwork)
	}

	return &artworks, nil
}

func (db *DB) countArtworks(filters string, args map[string]interface{}) (int, error) {
	query := strings.ReplaceAll(countArtworks, "#FILTERS#", filters)
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

func (db *DB) UpdateArtwork(artworkID int, opts *models.UpdateArtworkOpts) error {
	stmt, err := db.PrepareNamed(updateArtwork)
	if err != nil {
		return err
	}

	args := map[string]interface{}{
		"artwork_id":  artworkID,
		"title":       opts.Title,
		"description": opts.Description,
		"category":    opts.Category,
		"price":       opts.Price,
		"published":   opts.Published,
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
