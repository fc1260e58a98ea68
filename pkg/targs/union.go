// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"reflect"
	"strings"
)

// UnionCase pairs a discriminator tag value with a candidate argument type.
type UnionCase struct {
	tag string
	typ reflect.Type
}

// Case declares one variant of a tagged union: when the discriminator equals
// tag, the bag decodes as T.
func Case[T any](tag string) UnionCase {
	return UnionCase{tag: tag, typ: reflect.TypeFor[T]()}
}

// ResolveUnion decodes a raw value bag into one of several variant types,
// selected by the value of the discriminator field. Only the matched
// variant's fields are validated; bag entries belonging to other variants are
// tolerated rather than reported as unexpected.
func ResolveUnion(raw RawValues, tagField string, cases ...UnionCase) (any, error) {
	if len(cases) == 0 {
		return nil, specErrorf("ResolveUnion needs at least one case")
	}
	tags := make([]string, 0, len(cases))
	byTag := make(map[string]UnionCase, len(cases))
	for _, c := range cases {
		if _, dup := byTag[c.tag]; dup {
			return nil, specErrorf("union case %q declared twice", c.tag)
		}
		byTag[c.tag] = c
		tags = append(tags, c.tag)
	}

	tv, ok := raw[tagField]
	if !ok || !tv.Set {
		return nil, &ValidationError{
			Type:     cases[0].typ,
			Problems: []Problem{{Field: tagField, Kind: ProblemMissing}},
		}
	}
	tag := tv.First()
	c, ok := byTag[tag]
	if !ok {
		if canonical := canonicalChoice(tag, tags); canonical != "" {
			c, ok = byTag[canonical]
		}
	}
	if !ok {
		return nil, &ValidationError{
			Type: cases[0].typ,
			Problems: []Problem{{
				Field:      tagField,
				Kind:       ProblemChoice,
				Expected:   strings.Join(tags, ", "),
				Actual:     tag,
				Suggestion: closestName(tag, tags),
			}},
		}
	}

	def, err := introspect(c.typ)
	if err != nil {
		return nil, err
	}
	if _, declared := def.byDest[tagField]; !declared {
		return nil, specErrorf("union case %q (%s) does not declare the discriminator field %q",
			c.tag, c.typ.Name(), tagField)
	}
	v, err := decodeDef(def, raw, false)
	if err != nil {
		return nil, fmt.Errorf("union variant %q: %w", c.tag, err)
	}
	return v.Interface(), nil
}
