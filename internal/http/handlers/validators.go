package handlers

import (
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
)

var enhetsnummerRE = regexp.MustCompile(`^\d{4}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator:
//
//	enhetsnummer  four digits, e.g. "4806"
//	dato          a calendar date in yyyy-MM-dd
//
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("enhetsnummer", func(fl validator.FieldLevel) bool {
			return enhetsnummerRE.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("dato", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(domain.DatoFormat, fl.Field().String())
			return err == nil
		})
	})
}

// enhetHeader binds the unit the case handler acts on behalf of.
type enhetHeader struct {
	Enhet string `header:"X_ENHET" binding:"required,enhetsnummer"`
}
