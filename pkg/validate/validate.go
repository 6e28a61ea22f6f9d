// Package validate provides struct-tag validation for request payloads.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty (or a nil pointer), skip all remaining rules
//	email               valid email address
//	alpha               letters only
//	min=N / max=N       string: char length | number: value
//	size=N              string: exact length
//	gt=N                greater than N (decimal.Decimal included)
//	places=N            at most N digits after the decimal point
//	between=min,max     number or string length between min and max
//	digits=N            exactly N decimal digits
//	in=a,b,c            value must be one of the listed items (put it last)
//	eqfield=name        value must equal the sibling whose json name is name
//	dive                validate every element of a slice of structs
//
// Nested structs are always walked. Errors are keyed by their JSON path:
//
//	type OrderInput struct {
//	    Items []Item `json:"order_items" validate:"required,dive"`
//	}
//	// → {"order_items.1.quantity": "The quantity must be at least 1."}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// zeroer is implemented by value types such as decimal.Decimal and time.Time
// whose emptiness is not visible through reflection.
type zeroer interface{ IsZero() bool }

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldPath → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	walk(rv, "", errs)
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)
		name := jsonFieldName(field)
		path := prefix + name
		rules := splitRules(field.Tag.Get("validate"))

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		failed := false
		target := value
		for target.Kind() == reflect.Ptr && !target.IsNil() {
			target = target.Elem()
		}
		for _, rule := range rules {
			if rule == "nullable" || rule == "dive" || rule == "" {
				continue
			}
			check := target
			if rule == "required" {
				check = value
			}
			if msg := applyRule(rule, name, check, rv); msg != "" {
				errs[path] = msg
				failed = true
				break // first failing rule per field
			}
		}
		if failed {
			continue
		}

		switch {
		case target.Kind() == reflect.Struct && !isLeafStruct(target):
			walk(target, path+".", errs)
		case hasRule(rules, "dive") && target.Kind() == reflect.Slice:
			for j := 0; j < target.Len(); j++ {
				el := target.Index(j)
				for el.Kind() == reflect.Ptr && !el.IsNil() {
					el = el.Elem()
				}
				if el.Kind() == reflect.Struct {
					walk(el, fmt.Sprintf("%s.%d.", path, j), errs)
				}
			}
		}
	}
}

func applyRule(rule, field string, v reflect.Value, parent reflect.Value) string {
	raw := display(v)
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "alpha":
		for _, c := range raw {
			if !unicode.IsLetter(c) {
				return fmt.Sprintf("The %s field must contain only letters.", field)
			}
		}

	case "min":
		n := mustParseFloat(param)
		if isNumeric(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(length(v, raw)) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if isNumeric(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(length(v, raw)) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "size":
		if float64(len([]rune(raw))) != mustParseFloat(param) {
			return fmt.Sprintf("The %s must be exactly %s characters.", field, param)
		}
	case "gt":
		if toFloat(v) <= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	case "places":
		if _, frac, ok := strings.Cut(raw, "."); ok && float64(len(frac)) > mustParseFloat(param) {
			return fmt.Sprintf("The %s must have at most %s decimal places.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if ok {
			l, h := mustParseFloat(lo), mustParseFloat(hi)
			f := float64(length(v, raw))
			if isNumeric(v) {
				f = toFloat(v)
			}
			if f < l || f > h {
				return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
			}
		}
	case "digits":
		if !digitsOnlyRE.MatchString(raw) || float64(len(raw)) != mustParseFloat(param) {
			return fmt.Sprintf("The %s must be %s digits.", field, param)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)

	case "eqfield":
		other, ok := siblingByJSONName(parent, param)
		if !ok || display(other) != raw {
			return fmt.Sprintf("The %s must match %s.", field, param)
		}
	}

	return ""
}

var (
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
)

// display renders v the way rules compare it: pointers are dereferenced and
// Stringers (decimal.Decimal) use their String form.
func display(v reflect.Value) string {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ""
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func isEmpty(v reflect.Value) bool {
	if v.Kind() == reflect.Struct && v.CanInterface() {
		if z, ok := v.Interface().(zeroer); ok {
			return z.IsZero()
		}
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

// isLeafStruct reports struct types validated as scalars rather than walked.
func isLeafStruct(v reflect.Value) bool {
	if !v.CanInterface() {
		return true
	}
	_, ok := v.Interface().(zeroer)
	return ok
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Struct:
		return isLeafStruct(v) && numericRE.MatchString(display(v))
	}
	return false
}

var numericRE = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

func length(v reflect.Value, raw string) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(raw))
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(display(v), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the validate tag by comma while keeping multi-value
// parameters (in=, between=) intact.
// "required,in=a,b,c" → ["required", "in=a,b,c"]
func splitRules(tag string) []string {
	if tag == "" {
		return nil
	}
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam {
				s := current.String()
				inParam = s == "in=" || s == "between="
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

var knownRules = []string{
	"required", "nullable", "email", "alpha", "dive", "min=", "max=",
	"size=", "gt=", "places=", "digits=", "in=", "between=", "eqfield=",
}

func looksLikeNewRule(s string) bool {
	for _, k := range knownRules {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}

func siblingByJSONName(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonFieldName(rt.Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}
