package api

import (
	"net/http"
	"strconv"

	"bitbucket.org/konstbyte/backend/config"
	"bitbucket.org/konstbyte/backend/middlewares"
	"bitbucket.org/konstbyte/backend/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/mitchellh/mapstructure"
	"github.com/thedevsaddam/govalidator"
)

func InsertArtwork(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)

	if !userInfo.IsAdmin && !userInfo.IsArtist {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	var opts models.InsertArtworkOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.InsertArtworkRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	id, err := ctx.DB.InsertArtwork(userInfo.ID, &opts)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	artwork, err := ctx.DB.GetArtworkByID(id)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	w.WriteJSON(http.StatusOK, artwork, nil, "")
	return
}

func GetArtwork(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	vars := mux.Vars(r)
	artworkID, err := strconv.Atoi(vars["id"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing artwork id")
		return
	}

	artwork, err := ctx.DB.GetArtworkByID(artworkID)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if artwork == nil {
		w.Write(http.StatusNotFound, nil, nil, middlewares.Responses.ArtworkNotFound)
		return
	}

	w.WriteJSON(http.StatusOK, artwork, nil, "")
	return
}

func GetArtworks(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.GetArtworksRules,
	}
	v := govalidator.New(validatorOpts)
	errs := v.Validate()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	var opts models.GetArtworksOpts
	decoder := schema.NewDecoder()
	decoder.Decode(&opts, r.URL.Query())

	artworks, err := ctx.DB.GetArtworks(&opts)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	w.WriteJSON(http.StatusOK, artworks, nil, "")
	return
}

func UpdateArtwork(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)

	vars := mux.Vars(r)
	artworkID, err := strconv.Atoi(vars["id"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing artwork id")
		return
	}

	artwork, err := ctx.DB.GetArtworkByID(artworkID)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if artwork == nil {
		w.Write(http.StatusNotFound, nil, nil, middlewares.Responses.ArtworkNotFound)
		return
	}

	if !userInfo.IsAdmin && artwork.Owner.ID != userInfo.ID {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	var opts models.UpdateArtworkOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.UpdateArtworkRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	// Existing orders keep the amount they captured at creation; a price
	// edit here only affects future checkouts.
	if err := ctx.DB.UpdateArtwork(artworkID, &opts); err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	w.WriteJSON(http.StatusNoContent, nil, nil, "")
	return
}
