package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	decoder  = newDecoder()
	validate = validator.New(validator.WithRequiredStructEnabled())
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	// csrf token and button values ride along with every form
	d.IgnoreUnknownKeys(true)
	return d
}

type loginForm struct {
	Email    string `schema:"email" validate:"required,email"`
	Password string `schema:"password" validate:"min=6"`
}

type registerForm struct {
	Name         string `schema:"name" validate:"min=2"`
	Email        string `schema:"email" validate:"required,email"`
	Password     string `schema:"password" validate:"min=6"`
	PromoterCode string `schema:"promoter_code"`
}

type resendForm struct {
	Email string `schema:"email"`
}

type surveyForm struct {
	Step        int    `schema:"step"`
	Action      string `schema:"action"`
	Goal        string `schema:"goal"`
	GoalDetails string `schema:"goal_details"`
	Challenges  string `schema:"challenges"`
	Commitment  string `schema:"commitment"`
}

type confirmForm struct {
	Fragment string `schema:"fragment"`
}

// fieldMessages maps a field and failed rule to what the user sees.
var fieldMessages = map[string]string{
	"email":    "Please enter a valid email",
	"password": "Password must be at least 6 characters",
	"name":     "Name is required",
}

// decodeForm parses the posted form into dst and trims its string fields.
func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	form := r.PostForm
	for k, vs := range form {
		for i := range vs {
			if k != "password" {
				vs[i] = strings.TrimSpace(vs[i])
			}
		}
	}
	return decoder.Decode(dst, form)
}

// check validates v and returns one message per offending form field, or
// nil when v is valid.
func check(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}

	fields := map[string]string{}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if _, ok := fields[name]; ok {
			continue
		}
		msg, ok := fieldMessages[name]
		if !ok {
			msg = fe.Error()
		}
		fields[name] = msg
	}
	return fields
}
