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

func GetOrders(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)

	if !userInfo.IsAdmin && !userInfo.IsClient {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.GetOrdersRules,
	}
	v := govalidator.New(validatorOpts)
	errs := v.Validate()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	var opts models.GetOrdersOpts
	decoder := schema.NewDecoder()
	decoder.Decode(&opts, r.URL.Query())

	// Buyers only ever see their own orders.
	if !userInfo.IsAdmin {
		opts.BuyerIDs = []int{userInfo.ID}
	}

	orders, err := ctx.DB.GetOrders(&opts)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	w.WriteJSON(http.StatusOK, orders, nil, "")
	return
}

func GetOrder(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)

	vars := mux.Vars(r)
	orderID, err := strconv.Atoi(vars["id"])
	if err != nil {
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed parsing order id")
		return
	}

	order, err := ctx.DB.GetOrderByID(orderID)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if order == nil {
		w.Write(http.StatusNotFound, nil, nil, middlewares.Responses.OrderNotFound)
		return
	}

	if !userInfo.IsAdmin && order.Buyer.ID != userInfo.ID {
		w.Write(http.StatusForbidden, nil, nil, middlewares.Responses.InvalidRoles)
		return
	}

	w.WriteJSON(http.StatusOK, order, nil, "")
	return
}
