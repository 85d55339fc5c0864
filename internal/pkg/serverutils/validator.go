package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries a user-presentable message for a failed field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRequest runs struct-tag validation and converts the first failure
// into a readable error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			f := errs[0]
			return &ValidationError{
				Message: fmt.Sprintf("field '%s' failed on the '%s' rule", f.Field(), f.Tag()),
			}
		}
		return err
	}
	return nil
}
