package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// idRule accepts the opaque identifiers used for users, goals and jobs.
const idRule = "required,max=128,printascii,excludesall=/?#"

// validateID checks a path or body identifier and names the offending field on failure.
func validateID(field, value string) error {
	if err := validate.Var(strings.TrimSpace(value), idRule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", domain.ErrValidationFailed, field, verrs[0].Tag())
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrValidationFailed, field, err)
	}
	return nil
}
