package dto

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator instancia compartida. Los decimal.Decimal se validan como float64 (gt=0, gte=0);
// reglas propias: isodate (AAAA-MM-DD), farm, location, unit, category.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := entity.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("farm", stringCheck(entity.IsFarm))
		_ = v.RegisterValidation("location", stringCheck(entity.IsLocation))
		_ = v.RegisterValidation("unit", stringCheck(entity.IsValidUnit))
		_ = v.RegisterValidation("category", stringCheck(entity.IsValidCategory))
		validate = v
	})
	return validate
}

func stringCheck(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool { return ok(fl.Field().String()) }
}

// Validate valida las etiquetas del struct y devuelve el primer campo rechazado
// como *domain.ValidationError.
func Validate(in any) error {
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Invalid(fieldPath(fe), message(fe))
	}
	return domain.Invalid("", err.Error())
}

// fieldPath ruta con nombres json sin el nombre del struct raíz.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual que " + fe.Param()
	case "isodate":
		return "fecha inválida (AAAA-MM-DD)"
	case "farm":
		return "finca desconocida"
	case "location":
		return "ubicación desconocida"
	case "unit":
		return "unidad desconocida"
	case "category":
		return "categoría desconocida"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "max":
		return "excede el máximo de " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "nefield":
		return "debe ser distinto de " + fe.Param()
	default:
		return "valor inválido"
	}
}
