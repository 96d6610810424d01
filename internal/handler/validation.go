package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"claimdesk/internal/models"
)

// RegisterValidations installs custom binding validations on gin's validator.
// Call once at startup, before routes are served.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("claimstatus", func(fl validator.FieldLevel) bool {
		return models.ClaimStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("claimevent", func(fl validator.FieldLevel) bool {
		return models.Event(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
}
