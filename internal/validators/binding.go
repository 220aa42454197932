package validators

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

var weekdays = map[string]bool{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays[d.String()] = true
	}
}

// Register adds the request tags used by the handlers to gin's validator:
// weekday (Sunday..Saturday), clock (HH:MM) and civildate (YYYY-MM-DD).
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"weekday": func(fl validator.FieldLevel) bool {
			return weekdays[fl.Field().String()]
		},
		"clock": func(fl validator.FieldLevel) bool {
			_, err := calendar.ParseClock(fl.Field().String())
			return err == nil
		},
		"civildate": func(fl validator.FieldLevel) bool {
			_, err := calendar.ParseDate(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
