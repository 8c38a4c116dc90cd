package validation

import (
	"fmt"

	"github.com/internnepal/jobboard/internal/model"
)

// ValidateRole accepts an empty role (the default is applied later) or one of the known roles.
func ValidateRole(role string) error {
	if role == "" {
		return nil
	}
	if !model.Role(role).IsValid() {
		return fmt.Errorf("role must be one of %s, %s, %s", model.RoleStudent, model.RoleCompany, model.RoleAdmin)
	}
	return nil
}
