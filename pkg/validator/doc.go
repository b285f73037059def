// Package validator builds declarative checks for form input.
//
// Each rule pairs a Check function with the error reported when the check
// fails. Apply evaluates rules in order and aggregates failures into a
// ValidationErrors value that implements error:
//
//	err := validator.Apply(
//	    validator.Required("name", name).WithMessage("Enter your name"),
//	    validator.ValidEmail("email", email),
//	    validator.InListString("currency", code, paymybuddy.Currencies),
//	)
//	for _, e := range validator.ExtractValidationErrors(err) {
//	    form.Errors[e.Field] = e.Message
//	}
//
// Rules are plain values with no shared state and are safe for concurrent use.
package validator
