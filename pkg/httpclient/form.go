package httpclient

import (
	"net/url"
	"strconv"
	"strings"
)

// FormValue is a value that can be placed in a form body.
// The set of implementations is closed: String, Int, Float and Bool.
type FormValue interface {
	formText() string
}

// String is a textual form value.
type String string

// Int is an integral form value.
type Int int64

// Float is a floating point form value, written in the shortest exact decimal form.
type Float float64

// Bool is written as "true" or "false".
type Bool bool

func (v String) formText() string { return string(v) }
func (v Int) formText() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) formText() string  { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Bool) formText() string   { return strconv.FormatBool(bool(v)) }

type formField struct {
	key   string
	value FormValue
}

// Form is an ordered set of form fields. The zero value is ready to use.
type Form struct {
	fields []formField
	idx    map[string]int
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set adds key or replaces its value. A replaced key keeps its original position.
func (f *Form) Set(key string, value FormValue) *Form {
	if f.idx == nil {
		f.idx = make(map[string]int)
	}
	if i, ok := f.idx[key]; ok {
		f.fields[i].value = value
		return f
	}
	f.idx[key] = len(f.fields)
	f.fields = append(f.fields, formField{key: key, value: value})
	return f
}

// Len returns the number of fields.
func (f *Form) Len() int {
	if f == nil {
		return 0
	}
	return len(f.fields)
}

// Encode renders the form as application/x-www-form-urlencoded text in insertion order.
func (f *Form) Encode() string {
	if f.Len() == 0 {
		return ""
	}

	var b strings.Builder
	for i, field := range f.fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.key))
		b.WriteByte('=')
		if field.value != nil {
			b.WriteString(url.QueryEscape(field.value.formText()))
		}
	}
	return b.String()
}
