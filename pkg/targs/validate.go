// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Decode validates a raw value bag against T's field specification and
// returns the populated struct. Unlike dispatch-internal decoding it is
// strict: entries in the bag that T does not declare are reported as
// unexpected. All problems are collected into one ValidationError.
func Decode[T any](raw RawValues) (T, error) {
	var zero T
	def, err := introspect(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	v, err := decodeDef(def, raw, true)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// decodeDef coerces a raw bag into a fresh value of def's type. The walk
// never stops at the first finding; every missing, unset, mistyped, and
// out-of-choice field lands in the returned ValidationError.
func decodeDef(def *argDef, raw RawValues, strict bool) (reflect.Value, error) {
	out := reflect.New(def.typ).Elem()
	var problems []Problem
	known := make(map[string]bool, len(def.fields))

	for i := range def.fields {
		f := &def.fields[i]
		known[f.Dest] = true
		rv, present := raw[f.Dest]

		values := rv.Values
		if !rv.Set || len(values) == 0 {
			switch {
			case !present && f.Required():
				problems = append(problems, Problem{Field: f.Dest, Kind: ProblemMissing})
				continue
			case f.HasDefault:
				values = []string{f.Default}
				if f.Card == ZeroOrMore || f.Card == OneOrMore {
					values = splitNonEmpty(f.Default)
				}
			case f.Required():
				problems = append(problems, Problem{
					Field:    f.Dest,
					Kind:     ProblemMissingValue,
					Expected: requiredNoun(f.Card),
				})
				continue
			default:
				if f.Card == ZeroOrMore {
					// Absent lists decode to empty, never nil.
					out.FieldByIndex(f.Index).Set(reflect.MakeSlice(f.Type, 0, 0))
				}
				continue
			}
		}

		coerced, ok := coerceAll(f, values, &problems)
		if !ok {
			continue
		}
		assign(out.FieldByIndex(f.Index), f, coerced)
	}

	if strict {
		var extras []string
		for k := range raw {
			if !known[k] {
				extras = append(extras, k)
			}
		}
		sort.Strings(extras)
		for _, k := range extras {
			problems = append(problems, Problem{Field: k, Kind: ProblemUnexpected})
		}
	}
	if len(problems) > 0 {
		return reflect.Value{}, &ValidationError{Type: def.typ, Problems: problems}
	}
	return out, nil
}

// coerceAll converts every raw string of the field, recording a problem per
// failing value. ok is false when any value failed.
func coerceAll(f *FieldSpec, values []string, problems *[]Problem) ([]reflect.Value, bool) {
	out := make([]reflect.Value, 0, len(values))
	ok := true
	for _, v := range values {
		if len(f.Choices) > 0 {
			canonical := canonicalChoice(v, f.Choices)
			if canonical == "" {
				*problems = append(*problems, Problem{
					Field:      f.Dest,
					Kind:       ProblemChoice,
					Expected:   strings.Join(f.Choices, ", "),
					Actual:     v,
					Suggestion: closestName(v, f.Choices),
				})
				ok = false
				continue
			}
			v = canonical
		}
		elem := reflect.New(f.Elem).Elem()
		if err := setScalar(elem, v); err != nil {
			*problems = append(*problems, Problem{
				Field:    f.Dest,
				Kind:     ProblemType,
				Expected: typeName(f.Elem),
				Actual:   v,
			})
			ok = false
			continue
		}
		out = append(out, elem)
	}
	return out, ok
}

// assign stores coerced values into the struct field according to its shape.
func assign(fv reflect.Value, f *FieldSpec, values []reflect.Value) {
	switch f.Card {
	case Single:
		fv.Set(values[0])
	case OptionalSingle:
		ptr := reflect.New(f.Elem)
		ptr.Elem().Set(values[0])
		fv.Set(ptr)
	case ZeroOrMore, OneOrMore:
		slice := reflect.MakeSlice(f.Type, 0, len(values))
		for _, v := range values {
			slice = reflect.Append(slice, v)
		}
		fv.Set(slice)
	}
}

// setScalar parses one raw string into a scalar destination. Named types
// parse by their underlying kind; time.Duration and url.URL get their
// dedicated formats.
func setScalar(dst reflect.Value, v string) error {
	if dst.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		dst.SetInt(int64(d))
		return nil
	}
	if dst.Type() == reflect.TypeOf(url.URL{}) {
		u, err := url.Parse(v)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(*u))
		return nil
	}
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(v)
	case reflect.Bool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(v, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(v, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(v, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(n)
	default:
		return strconv.ErrSyntax
	}
	return nil
}

// canonicalChoice matches v against the allowed choices, first exactly, then
// ignoring case and hyphen/underscore spelling. It returns the canonical
// choice string so "Disk-Cache" decodes as the declared "disk_cache".
func canonicalChoice(v string, choices []string) string {
	for _, c := range choices {
		if c == v {
			return c
		}
	}
	n := normalizeChoice(v)
	for _, c := range choices {
		if normalizeChoice(c) == n {
			return c
		}
	}
	return ""
}

func normalizeChoice(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

func requiredNoun(c Cardinality) string {
	if c == OneOrMore {
		return "at least one value"
	}
	return "a value"
}
