package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/middleware"
)

// renderError 统一输出应用错误
func renderError(c *gin.Context, err error) {
	appErr := errors.Wrap(err, errors.ErrUnknown)
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(appErr, middleware.GetRequestID(c)))
}
