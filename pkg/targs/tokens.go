// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Tokens renders a populated argument struct back into command-line tokens
// that parse to an equal value. Flags come first, positionals follow in
// declaration order; unset optionals and empty lists emit nothing.
func Tokens(v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	def, err := introspect(rv.Type())
	if err != nil {
		return nil, err
	}

	var out []string
	for i := range def.fields {
		f := &def.fields[i]
		if f.Positional {
			continue
		}
		fv := rv.FieldByIndex(f.Index)
		name := "--" + f.FlagNames()[0]
		switch {
		case f.Bool:
			base := false
			if f.HasDefault {
				base = f.Default == "true"
			}
			if fv.Bool() != base {
				out = append(out, name)
			}
		case f.Card == OptionalSingle:
			if !fv.IsNil() {
				out = append(out, name, formatScalar(fv.Elem()))
			}
		case f.Card == ZeroOrMore || f.Card == OneOrMore:
			for j := 0; j < fv.Len(); j++ {
				out = append(out, name, formatScalar(fv.Index(j)))
			}
		default:
			out = append(out, name, formatScalar(fv))
		}
	}
	for _, idx := range def.positionals {
		f := &def.fields[idx]
		fv := rv.FieldByIndex(f.Index)
		switch f.Card {
		case Single:
			out = append(out, formatScalar(fv))
		case OptionalSingle:
			if !fv.IsNil() {
				out = append(out, formatScalar(fv.Elem()))
			}
		case ZeroOrMore, OneOrMore:
			for j := 0; j < fv.Len(); j++ {
				out = append(out, formatScalar(fv.Index(j)))
			}
		}
	}
	return out, nil
}

func formatScalar(v reflect.Value) string {
	if v.Type() == reflect.TypeOf(time.Duration(0)) {
		return time.Duration(v.Int()).String()
	}
	if v.Type() == reflect.TypeOf(url.URL{}) {
		u := v.Interface().(url.URL)
		return u.String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	}
	return fmt.Sprint(v.Interface())
}
