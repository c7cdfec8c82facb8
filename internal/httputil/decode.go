package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"

	"novara/internal/model"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrMalformedJSON is returned when the body is not valid JSON for the target type.
var ErrMalformedJSON = errors.New("malformed JSON body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	// decimal accepts plain money amounts, see model.ParseAmount
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := model.ParseAmount(fl.Field().String())
		return err == nil
	})
	return v
}

// DecodeJSON reads the request body into dst. It returns ErrMalformedJSON for
// unparsable bodies and a *ValidationError when struct tags are not satisfied.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return Validate(dst)
}

// Validate runs the struct tag validation on v.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{fields: verrs}
		}
		return err
	}
	return nil
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", f.Field(), f.Tag()))
	}
	return "invalid payload: " + strings.Join(msgs, "; ")
}

// WriteDecodeError maps a DecodeJSON error to a 400 response. Clients get a
// generic message; the failing fields go to the request logger at debug level.
func WriteDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Debug().Err(err).Msg("request body rejected")

	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteBadRequestWithCode(w, ErrCodeValidation, "Invalid data")
		return
	}
	WriteBadRequest(w, "Invalid request body")
}
