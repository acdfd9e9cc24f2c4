// Package validation checks whisperbridge inputs and turns failures into
// INVALID_INPUT errors with per-field details.
//
// Struct tag validation is backed by go-playground/validator and reports
// fields by their json names:
//
//	type createWorker struct {
//	    Model string `json:"model" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// The programmatic Validator collects checks that tags cannot express:
//
//	v := validation.New()
//	v.Custom(lang == "auto" || known, "language", "is not supported")
//	err := v.Validate()
package validation
