// Package validate checks registration input. Each field reports its own
// pass/fail so the dashboard can echo every field back before the aggregate
// verdict.
package validate

import (
	"regexp"
	"strings"
)

// Names are letters and spaces, including the Norwegian letters.
var nameRe = regexp.MustCompile(`^[A-Za-zÆØÅæøå\s]+$`)

// Norwegian phone numbers: exactly eight digits, no prefix.
var phoneRe = regexp.MustCompile(`^[0-9]{8}$`)

type Field struct {
	Name  string `json:"field"`
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

type Result struct {
	Fields []Field `json:"fields"`
}

func (r Result) OK() bool {
	for _, f := range r.Fields {
		if !f.Valid {
			return false
		}
	}
	return true
}

func Name(name string) bool {
	return nameRe.MatchString(name)
}

func Phone(phone string) bool {
	return phoneRe.MatchString(phone)
}

func Email(email string) bool {
	return strings.Contains(email, "@")
}

func User(name, phone, email string) Result {
	return Result{Fields: []Field{
		{Name: "name", Value: name, Valid: Name(name)},
		{Name: "phone", Value: phone, Valid: Phone(phone)},
		{Name: "email", Value: email, Valid: Email(email)},
	}}
}
