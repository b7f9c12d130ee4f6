package validation

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "distresscli/internal/errors"
	"distresscli/pkg/contracts/domain"
)

// periodPrefix is the leading YYYY-MM-DD of a period ending
var periodPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// StatementValidator checks statement sets before they reach the engine
type StatementValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewStatementValidator creates a validator with the ticker and period rules registered
func NewStatementValidator(logger *slog.Logger) *StatementValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("ticker", isValidTicker)
	v.RegisterValidation("period", isValidPeriod)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &StatementValidator{
		validate: v,
		logger:   logger.With(slog.String("component", "statement_validator")),
	}
}

// ValidateSet returns a VALIDATION AppError listing every failed field
func (v *StatementValidator) ValidateSet(set domain.StatementSet) error {
	err := v.validate.Struct(set)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid statement set", err)
	}

	fields := make([]apperrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}

	v.logger.Warn("statement set rejected",
		slog.String("ticker", set.Ticker),
		slog.Int("failures", len(fields)),
	)

	return apperrors.NewAppValidationError(
		fmt.Sprintf("invalid statement set %q", set.Ticker), fields)
}

// ValidateSets validates every set and stops at the first failure
func (v *StatementValidator) ValidateSets(sets []domain.StatementSet) error {
	for i, set := range sets {
		if err := v.ValidateSet(set); err != nil {
			return fmt.Errorf("set %d: %w", i, err)
		}
	}
	return nil
}

// fieldPath drops the struct name so paths read like income[0].period_ending
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "ticker":
		return fmt.Sprintf("%s must be a valid ticker symbol", field)
	case "period":
		return fmt.Sprintf("%s must start with a YYYY-MM-DD date", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isValidTicker accepts 1-10 upper-case letters, digits and dots
func isValidTicker(fl validator.FieldLevel) bool {
	ticker := fl.Field().String()
	if len(ticker) < 1 || len(ticker) > 10 {
		return false
	}
	for _, ch := range ticker {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '.') {
			return false
		}
	}
	return true
}

// isValidPeriod accepts period endings that begin with a real calendar date,
// optionally followed by a time component
func isValidPeriod(fl validator.FieldLevel) bool {
	period := fl.Field().String()
	prefix := periodPrefix.FindString(period)
	if prefix == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", prefix)
	return err == nil
}
