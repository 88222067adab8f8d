package handler

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"brewpos/internal/apierror"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Teach the validator to treat decimal.Decimal as a float so
		// gt/gte tags work on money and stock fields.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	}
}

// bindAndValidate binds JSON and turns validator errors into a field map.
// Returns false after writing the 400 response.
func bindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New("malformed request body"))
		return false
	}
	return true
}

// fail attaches err for the ErrorHandler middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
