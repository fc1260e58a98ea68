// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Cardinality describes how many values a field consumes.
type Cardinality int

const (
	// Single is a required field with exactly one value.
	Single Cardinality = iota
	// OptionalSingle is an optional field with at most one value (pointer types).
	OptionalSingle
	// ZeroOrMore is a repeatable field that may be absent (slice types).
	ZeroOrMore
	// OneOrMore is a repeatable field that requires at least one value.
	OneOrMore
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case OptionalSingle:
		return "optional-single"
	case ZeroOrMore:
		return "zero-or-more"
	case OneOrMore:
		return "one-or-more"
	}
	return "unknown"
}

// Choicer restricts a named type to a closed set of string values. Types
// implementing it get automatic choice validation and help rendering:
//
//	type Mode string
//
//	func (Mode) Choices() []string { return []string{"fast", "safe"} }
type Choicer interface {
	Choices() []string
}

var choicerType = reflect.TypeOf((*Choicer)(nil)).Elem()

// FieldSpec is the introspected description of one struct field: its external
// name, value shape, default, aliases, help text, and allowed choices.
// FieldSpecs are computed once per type and immutable afterwards.
type FieldSpec struct {
	Name       string       // Go field name
	Dest       string       // canonical external name (kebab-case), key into RawValues
	Index      []int        // reflect field index path, embedding-aware
	Type       reflect.Type // declared field type
	Elem       reflect.Type // underlying scalar type (slice element, pointee)
	Positional bool
	Bool       bool // value-less toggle
	Card       Cardinality
	Default    string
	HasDefault bool
	Aliases    []string // explicit long names from the flag tag
	Short      string   // one-char shorthand
	Help       string
	Choices    []string
	Pos        int // ordinal for positionals
}

// Required reports whether the field must be set on the command line.
func (f *FieldSpec) Required() bool {
	if f.Bool || f.HasDefault {
		return false
	}
	return f.Card == Single || f.Card == OneOrMore
}

// FlagNames returns the long names the field answers to: every declared
// alias, plus the derived name. The derived name is suppressed only when
// every declared alias is itself longer than one character.
func (f *FieldSpec) FlagNames() []string {
	if f.Positional {
		return nil
	}
	names := make([]string, 0, len(f.Aliases)+1)
	allLong := len(f.Aliases) > 0
	for _, a := range f.Aliases {
		names = append(names, a)
		if len(a) <= 1 {
			allLong = false
		}
	}
	if !allLong {
		names = append(names, f.Dest)
	}
	return names
}

// argDef is the introspected form of one argument struct type.
type argDef struct {
	typ         reflect.Type
	fields      []FieldSpec
	byDest      map[string]int
	positionals []int // indexes into fields, sorted by position
}

var defCache sync.Map // reflect.Type -> *argDef

// Specs returns the introspected field specifications for the given argument
// struct type (passed as a prototype value). It is the public entry point to
// the introspector, useful for documentation tooling and completion engines.
func Specs(prototype any) ([]FieldSpec, error) {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	def, err := introspect(t)
	if err != nil {
		return nil, err
	}
	out := make([]FieldSpec, len(def.fields))
	copy(out, def.fields)
	return out, nil
}

// introspect extracts the argDef for a struct type, caching the result
// process-wide. The cache makes repeated tree compilation cheap and
// guarantees a type always yields the identical spec.
func introspect(t reflect.Type) (*argDef, error) {
	if cached, ok := defCache.Load(t); ok {
		return cached.(*argDef), nil
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, specErrorf("argument type must be a struct, got %v", t)
	}

	d := &argDef{typ: t, byDest: make(map[string]int)}
	var problems []string
	collectFields(t, nil, d, &problems)
	checkPositionals(d, &problems)

	if len(problems) > 0 {
		return nil, &SpecError{Problems: problems}
	}
	defCache.Store(t, d)
	return d, nil
}

// collectFields flattens the struct's fields into d, embedded (common) fields
// ahead of the struct's own so inherited arguments keep parent-first order.
func collectFields(t reflect.Type, index []int, d *argDef, problems *[]string) {
	// Pass 1: embedded structs.
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		if sf.Type.Kind() != reflect.Struct {
			*problems = append(*problems, fmt.Sprintf("%s.%s: embedded field must be a struct", t.Name(), sf.Name))
			continue
		}
		collectFields(sf.Type, append(append([]int{}, index...), i), d, problems)
	}
	// Pass 2: the struct's own fields.
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		spec, errs := buildFieldSpec(t, sf, append(append([]int{}, index...), i))
		if len(errs) > 0 {
			*problems = append(*problems, errs...)
			continue
		}
		if prev, ok := d.byDest[spec.Dest]; ok {
			*problems = append(*problems, fmt.Sprintf(
				"%s: argument name %q declared by both %s and %s", d.typ.Name(), spec.Dest, d.fields[prev].Name, spec.Name))
			continue
		}
		if err := checkAliasCollisions(d, &spec); err != "" {
			*problems = append(*problems, err)
			continue
		}
		d.byDest[spec.Dest] = len(d.fields)
		d.fields = append(d.fields, spec)
	}
}

func checkAliasCollisions(d *argDef, spec *FieldSpec) string {
	seen := make(map[string]string)
	for _, f := range d.fields {
		for _, n := range f.FlagNames() {
			seen[n] = f.Name
		}
		if f.Short != "" {
			seen[f.Short] = f.Name
		}
	}
	for _, n := range spec.FlagNames() {
		if owner, ok := seen[n]; ok {
			return fmt.Sprintf("%s: flag alias %q of %s collides with %s", d.typ.Name(), n, spec.Name, owner)
		}
	}
	if spec.Short != "" {
		if owner, ok := seen[spec.Short]; ok {
			return fmt.Sprintf("%s: short alias %q of %s collides with %s", d.typ.Name(), spec.Short, spec.Name, owner)
		}
	}
	return ""
}

func buildFieldSpec(owner reflect.Type, sf reflect.StructField, index []int) (FieldSpec, []string) {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("%s.%s: %s", owner.Name(), sf.Name, fmt.Sprintf(format, args...)))
	}

	spec := FieldSpec{
		Name:  sf.Name,
		Dest:  kebab(sf.Name),
		Index: index,
		Type:  sf.Type,
		Help:  sf.Tag.Get("help"),
	}
	if spec.Dest == "help" {
		fail("argument name %q is reserved", spec.Dest)
	}

	// Shape classification: the type alone determines the cardinality.
	elem := sf.Type
	switch sf.Type.Kind() {
	case reflect.Pointer:
		spec.Card = OptionalSingle
		elem = sf.Type.Elem()
		if elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Slice {
			fail("unsupported type %s", sf.Type)
			return spec, errs
		}
	case reflect.Slice:
		spec.Card = ZeroOrMore
		elem = sf.Type.Elem()
		if elem.Kind() == reflect.Bool {
			fail("unsupported type %s: a list of toggles is not expressible on a command line", sf.Type)
		}
	default:
		spec.Card = Single
	}
	spec.Elem = elem

	if !supportedScalar(elem) {
		fail("unsupported type %s", sf.Type)
		return spec, errs
	}
	if elem.Kind() == reflect.Bool {
		spec.Bool = true
	}

	if _, ok := sf.Tag.Lookup("nonempty"); ok {
		if spec.Card != ZeroOrMore {
			fail("nonempty tag requires a slice type, got %s", sf.Type)
		} else {
			spec.Card = OneOrMore
		}
	}

	if defVal, ok := sf.Tag.Lookup("default"); ok {
		spec.Default = defVal
		spec.HasDefault = true
	}

	// Choice source: explicit tag or a Choicer implementation on the type.
	if choices, ok := sf.Tag.Lookup("choices"); ok {
		spec.Choices = splitNonEmpty(choices)
	} else if src := choiceSource(elem); src != nil {
		spec.Choices = src.Choices()
	}
	if len(spec.Choices) > 0 && elem.Kind() != reflect.String {
		fail("choices require a string-kind type, got %s", elem)
	}

	posTag, positional := sf.Tag.Lookup("pos")
	flagTag, hasFlagTag := sf.Tag.Lookup("flag")
	shortTag := sf.Tag.Get("short")

	if positional {
		if hasFlagTag || shortTag != "" {
			fail("a positional argument cannot also declare flag aliases")
		}
		if spec.Bool {
			fail("a bool argument is always a flag toggle and cannot be positional")
		}
		spec.Positional = true
		if err := parsePosTag(&spec, posTag); err != "" {
			fail("%s", err)
		}
		// Positional defaults are only meaningful for lists that may be empty.
		if spec.HasDefault && spec.Card != ZeroOrMore {
			fail("a default is only allowed on a zero-or-more positional argument")
		}
	} else {
		if hasFlagTag {
			spec.Aliases = splitNonEmpty(flagTag)
			for _, a := range spec.Aliases {
				if strings.HasPrefix(a, "-") {
					fail("flag alias %q must not include leading dashes", a)
				}
			}
		}
		if shortTag != "" {
			if len(shortTag) != 1 {
				fail("short alias %q must be a single character", shortTag)
			}
			spec.Short = shortTag
		}
		for _, n := range spec.FlagNames() {
			if n == "help" || n == "h" {
				fail("flag alias %q is reserved", n)
			}
		}
	}

	if spec.HasDefault {
		validateDefault(&spec, fail)
	}

	return spec, errs
}

// parsePosTag reads positional tags of the form "0", "1?", "0*", "0+". The
// suffix must agree with the cardinality already derived from the type shape.
func parsePosTag(spec *FieldSpec, tag string) string {
	numPart := tag
	switch {
	case strings.HasSuffix(tag, "?"):
		numPart = strings.TrimSuffix(tag, "?")
		if spec.Card != OptionalSingle {
			return fmt.Sprintf("pos:%q marks the argument optional, which requires a pointer type (got %s)", tag, spec.Type)
		}
	case strings.HasSuffix(tag, "*"):
		numPart = strings.TrimSuffix(tag, "*")
		if spec.Card != ZeroOrMore {
			return fmt.Sprintf("pos:%q requires a slice type, got %s", tag, spec.Type)
		}
	case strings.HasSuffix(tag, "+"):
		numPart = strings.TrimSuffix(tag, "+")
		if spec.Card != ZeroOrMore && spec.Card != OneOrMore {
			return fmt.Sprintf("pos:%q requires a slice type, got %s", tag, spec.Type)
		}
		spec.Card = OneOrMore
	default:
		if spec.Card == OptionalSingle {
			return fmt.Sprintf("an optional (pointer) positional must use a pos:%q tag", tag+"?")
		}
	}
	n, err := strconv.Atoi(numPart)
	if err != nil || n < 0 {
		return fmt.Sprintf("invalid pos tag %q", tag)
	}
	spec.Pos = n
	return ""
}

func validateDefault(spec *FieldSpec, fail func(string, ...any)) {
	if spec.Positional && spec.Card != ZeroOrMore {
		return // already reported as illegal
	}
	values := []string{spec.Default}
	if spec.Card == ZeroOrMore || spec.Card == OneOrMore {
		values = splitNonEmpty(spec.Default)
	}
	for _, v := range values {
		if len(spec.Choices) > 0 && canonicalChoice(v, spec.Choices) == "" {
			fail("default %q is not one of the allowed choices %v", v, spec.Choices)
			continue
		}
		tmp := reflect.New(spec.Elem).Elem()
		if err := setScalar(tmp, v); err != nil {
			fail("invalid default %q: %v", spec.Default, err)
		}
	}
}

func checkPositionals(d *argDef, problems *[]string) {
	for i, f := range d.fields {
		if f.Positional {
			d.positionals = append(d.positionals, i)
		}
	}
	sort.SliceStable(d.positionals, func(a, b int) bool {
		return d.fields[d.positionals[a]].Pos < d.fields[d.positionals[b]].Pos
	})
	seenOptional := false
	for rank, idx := range d.positionals {
		f := d.fields[idx]
		if f.Pos != rank {
			*problems = append(*problems, fmt.Sprintf(
				"%s: positional %s declares position %d, expected %d (positions must be contiguous from 0)",
				d.typ.Name(), f.Name, f.Pos, rank))
		}
		switch f.Card {
		case OptionalSingle:
			seenOptional = true
		case Single:
			if seenOptional {
				*problems = append(*problems, fmt.Sprintf(
					"%s: required positional %s follows an optional one", d.typ.Name(), f.Name))
			}
		case ZeroOrMore, OneOrMore:
			if rank != len(d.positionals)-1 {
				*problems = append(*problems, fmt.Sprintf(
					"%s: variadic positional %s must be declared last", d.typ.Name(), f.Name))
			}
		}
	}
}

func supportedScalar(t reflect.Type) bool {
	if t == reflect.TypeOf(time.Duration(0)) || t == reflect.TypeOf(url.URL{}) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// typeName is the short value-type label shown in flag usage lines.
func typeName(t reflect.Type) string {
	if t == reflect.TypeOf(time.Duration(0)) {
		return "duration"
	}
	if t == reflect.TypeOf(url.URL{}) {
		return "url"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	}
	return t.String()
}

func choiceSource(t reflect.Type) Choicer {
	if t.Implements(choicerType) {
		return reflect.New(t).Elem().Interface().(Choicer)
	}
	if reflect.PointerTo(t).Implements(choicerType) {
		return reflect.New(t).Interface().(Choicer)
	}
	return nil
}

// kebab converts a Go field name to its external hyphenated form:
// "Verbose" -> "verbose", "ControlURL" -> "control-url", "MaxRetries" ->
// "max-retries". Underscores translate to hyphens as well.
func kebab(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r == '_' {
			b.WriteByte('-')
			continue
		}
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (unicode.IsUpper(runes[i-1]) && nextLower)) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
