package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"workforce_backend/internal/calendar"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User-facing messages for rejected query parameters.
const (
	msgInvalidMonth      = "Invalid month format. Use YYYY-MM"
	msgInvalidDate       = "Invalid date format. Expect YYYY-MM-DD."
	msgInvalidEmployeeID = "Invalid employeeId."
	msgInvalidDepartment = "Invalid department id."
)

var registerOnce sync.Once

// RegisterValidators adds the yearmonth, daykey and objectid tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			utils.LogWarn("Binding engine is not go-playground/validator, custom tags unavailable")
			return
		}
		mustRegister(v, "yearmonth", func(fl validator.FieldLevel) bool {
			_, err := calendar.ParseMonth(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "daykey", func(fl validator.FieldLevel) bool {
			_, err := calendar.ParseDayKey(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(strings.TrimSpace(fl.Field().String()))
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register validator " + tag + ": " + err.Error())
	}
}

// --- Query DTOs ---

type pageQuery struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

type myMonthlyQuery struct {
	pageQuery
	Month string `form:"month" binding:"required,yearmonth"`
}

type adminMonthlyQuery struct {
	pageQuery
	Month      string `form:"month" binding:"omitempty,yearmonth"`
	Department string `form:"department" binding:"omitempty,objectid"`
}

type adminDetailQuery struct {
	pageQuery
	Date       string `form:"date" binding:"omitempty,daykey"`
	EmployeeID string `form:"employeeId" binding:"omitempty,objectid"`
	Department string `form:"department" binding:"omitempty,objectid"`
}

type exportQuery struct {
	Month      string `form:"month" binding:"omitempty,yearmonth"`
	Department string `form:"department" binding:"omitempty,objectid"`
}

type employeeListQuery struct {
	pageQuery
	Department string `form:"department" binding:"omitempty,objectid"`
}

// bindQuery binds and validates the query string, answering 400 itself on failure.
func bindQuery(c *gin.Context, target interface{}, handlerName string) bool {
	if err := c.ShouldBindQuery(target); err != nil {
		utils.LogDebug(handlerName+": rejected query", map[string]interface{}{"error": err.Error()})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, queryErrorMessage(err), err.Error()))
		return false
	}
	return true
}

// queryErrorMessage names the first offending parameter the way clients expect it.
func queryErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid query parameters."
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Month":
		return msgInvalidMonth
	case "Date":
		return msgInvalidDate
	case "EmployeeID":
		return msgInvalidEmployeeID
	case "Department":
		return msgInvalidDepartment
	}
	return "Invalid query parameter: " + fe.Field()
}
