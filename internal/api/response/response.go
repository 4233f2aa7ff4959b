package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// SuccessResponse returns a 200 envelope around extras
func SuccessResponse(c *gin.Context, extras any) {
	SuccessResponseWithCode(c, http.StatusOK, extras)
}

// SuccessResponseWithCode returns a success envelope with the given status
func SuccessResponseWithCode(c *gin.Context, code int, extras any) {
	c.JSON(code, NewResponse(true, code, extras))
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			map[string]any{
				"message": message,
			},
		))
}
