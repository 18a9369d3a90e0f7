package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
	"github.com/mbdsaraiva/academia-api/pkg/response"
)

// pageParams reads page, limit, sort and order query parameters.
func pageParams(c *gin.Context) (page, size int, sortBy, order string) {
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size, c.Query("sort"), c.Query("order")
}

// bindJSON decodes the request body into dest, answering 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
