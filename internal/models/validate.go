package models

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"qrmenu/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var (
	slugRe         = regexp.MustCompile(`^[a-z0-9-]+$`)
	categoryNameRe = regexp.MustCompile(`^[\p{L}\p{N} \-&'.,()!/]+$`)
)

// allowedHosts lists the hosts accepted for each known social link field.
var allowedHosts = map[string][]string{
	"instagram": {"instagram.com", "www.instagram.com"},
	"facebook":  {"facebook.com", "www.facebook.com", "m.facebook.com", "fb.com"},
	"tiktok":    {"tiktok.com", "www.tiktok.com", "vm.tiktok.com"},
	"telegram":  {"t.me", "telegram.me", "www.telegram.me"},
}

// validate is safe for concurrent use; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("catname", func(fl validator.FieldLevel) bool {
		return categoryNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("host", func(fl validator.FieldLevel) bool {
		hosts, ok := allowedHosts[fl.Param()]
		if !ok {
			return false
		}
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, h := range hosts {
			if host == h {
				return true
			}
		}
		return false
	})
	return v
}

// IsHTTPURL reports whether raw is an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks v against its struct tags and reports the first violation
// as a ValidationFailed error naming the field and constraint.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.Validation(fieldPath(fe), fe.Tag())
	}
	return apperrors.Internal(err)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
