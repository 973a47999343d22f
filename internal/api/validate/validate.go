// Package validate wraps go-playground/validator with a JSON-friendly
// field-error shape.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		msg := "invalid"
		switch fe.Tag() {
		case "required":
			msg = "required"
		case "gt":
			msg = "must be > " + fe.Param()
		case "min":
			msg = "must be at least " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param()
		}
		out = append(out, ErrField{Field: strings.ToLower(fe.Field()), Msg: msg})
	}
	return out
}
