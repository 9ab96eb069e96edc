/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package validation checks request fields against `validate` struct tags.
// Violations come with English descriptions, so callers can show them as is.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var objectIDRegex = regexp.MustCompile(`^[0-9a-f]{24}$`)

var (
	validate = validator.New()
	trans    ut.Translator
)

// FieldLevel gives a custom rule access to the field it checks.
type FieldLevel = validator.FieldLevel

// Func is a custom rule. It reports whether the field is valid.
type Func func(level FieldLevel) bool

// Violation describes a value that failed a rule.
type Violation struct {
	Tag         string
	Field       string
	Err         error
	Description string
}

// Error returns the message of the underlying validator error.
func (v Violation) Error() string {
	return v.Err.Error()
}

// Unwrap returns the underlying validator error.
func (v Violation) Unwrap() error {
	return v.Err
}

// StructError holds every violation of a struct, in field order.
type StructError struct {
	Violations []Violation
}

// Error returns the descriptions, one per line.
func (s *StructError) Error() string {
	descriptions := make([]string, 0, len(s.Violations))
	for _, v := range s.Violations {
		descriptions = append(descriptions, v.Description)
	}
	return strings.Join(descriptions, "\n")
}

// Register adds a rule under tag. msg describes a violation, with {0}
// standing for the field name. It is meant to be called from init.
func Register(tag, msg string, fn Func) error {
	if err := validate.RegisterValidation(tag, func(level validator.FieldLevel) bool {
		return fn(level)
	}); err != nil {
		return fmt.Errorf("register validation %s: %w", tag, err)
	}

	if err := validate.RegisterTranslation(
		tag,
		trans,
		func(t ut.Translator) error {
			return t.Add(tag, msg, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			description, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return description
		},
	); err != nil {
		return fmt.Errorf("register translation %s: %w", tag, err)
	}

	return nil
}

// ValidateValue checks a single value against the rules of tag.
func ValidateValue(v interface{}, tag string) error {
	err := validate.Var(v, tag)
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	return toViolation(errs[0])
}

// ValidateStruct checks s against its `validate` tags. A failure is a
// *StructError.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	structError := &StructError{}
	for _, fe := range errs {
		structError.Violations = append(structError.Violations, toViolation(fe))
	}
	return structError
}

func toViolation(fe validator.FieldError) Violation {
	return Violation{
		Tag:         fe.Tag(),
		Field:       fe.StructField(),
		Err:         fe,
		Description: fe.Translate(trans),
	}
}

func init() {
	locale := en.New()
	trans, _ = ut.New(locale, locale).GetTranslator(locale.Locale())
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("register default translations: %v", err))
	}

	rules := []struct {
		tag string
		msg string
		fn  Func
	}{{
		tag: "not_blank",
		msg: "{0} must not be blank",
		fn: func(level FieldLevel) bool {
			return strings.TrimSpace(level.Field().String()) != ""
		},
	}, {
		tag: "object_id",
		msg: "{0} must be a 24-character hex identifier",
		fn: func(level FieldLevel) bool {
			return objectIDRegex.MatchString(level.Field().String())
		},
	}, {
		tag: "duration",
		msg: "{0} must be a duration such as 5s or 1h30m",
		fn: func(level FieldLevel) bool {
			_, err := time.ParseDuration(level.Field().String())
			return err == nil
		},
	}}

	for _, rule := range rules {
		if err := Register(rule.tag, rule.msg, rule.fn); err != nil {
			panic(err)
		}
	}
}
