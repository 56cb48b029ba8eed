// Package scalar resolves a leaf scalar string returned by the interpreter
// into a typed value, per the implicit-tagging boundary of §6: bool, null,
// int, float, timestamp, binary, or (as the fallback that always succeeds)
// the string itself. It is a pure function with a fixed regex table; it has
// no dependency on bnf or interp.
package scalar

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the resolved variants.
type Kind int

const (
	KindStr Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindTimestamp
	KindBinary
)

// Value is a resolved scalar. Only the field matching Kind is meaningful.
type Value struct {
	Kind      Kind
	Str       string
	Bool      bool
	Int       int64
	Float     float64
	Timestamp time.Time
	Binary    []byte
}

func strValue(s string) Value          { return Value{Kind: KindStr, Str: s} }
func nullValue() Value                 { return Value{Kind: KindNull} }
func boolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func intValue(n int64) Value           { return Value{Kind: KindInt, Int: n} }
func floatValue(f float64) Value       { return Value{Kind: KindFloat, Float: f} }
func timestampValue(t time.Time) Value { return Value{Kind: KindTimestamp, Timestamp: t} }
func binaryValue(b []byte) Value       { return Value{Kind: KindBinary, Binary: b} }

// schemaNames is the ordered list Resolve tries when no explicit tag is
// given (§6): the first schema whose regex fully matches wins, and str
// never fails, so Resolve without a tag always succeeds.
var schemaNames = []string{"null", "bool", "int", "float", "timestamp", "binary", "str"}

type tryFunc func(string) (Value, bool)

var schemas = map[string]tryFunc{
	"null":      tryNull,
	"bool":      tryBool,
	"int":       tryInt,
	"float":     tryFloat,
	"timestamp": tryTimestamp,
	"binary":    tryBinary,
	"str":       func(s string) (Value, bool) { return strValue(s), true },
}

// Resolve implements the boundary function of §6. With an explicit tag, only
// that schema is tried and a mismatch is an error (mirroring the original
// node_value's strict-tag behavior). Without a tag, schemas are tried in
// schemaNames order and the first match wins; since "str" always matches,
// Resolve(text, "") never fails.
func Resolve(text, tag string) (Value, error) {
	if tag != "" {
		f, ok := schemas[tag]
		if !ok {
			return Value{}, fmt.Errorf("scalar: schema %q is not recognized", tag)
		}
		v, ok := f(text)
		if !ok {
			return Value{}, fmt.Errorf("scalar: %q is not %s", text, tag)
		}
		return v, nil
	}
	for _, name := range schemaNames {
		if v, ok := schemas[name](text); ok {
			return v, nil
		}
	}
	return strValue(text), nil
}

func exact(pattern, s string) bool {
	return regexp.MustCompile(`^(?:` + pattern + `)$`).MatchString(s)
}

var nullRe = `~|null|Null|NULL|`

func tryNull(s string) (Value, bool) {
	if exact(nullRe, s) {
		return nullValue(), true
	}
	return Value{}, false
}

var (
	boolTrueRe  = `y|Y|yes|Yes|YES|true|True|TRUE|on|On|ON`
	boolFalseRe = `n|N|no|No|NO|false|False|FALSE|off|Off|OFF`
)

func tryBool(s string) (Value, bool) {
	if exact(boolTrueRe, s) {
		return boolValue(true), true
	}
	if exact(boolFalseRe, s) {
		return boolValue(false), true
	}
	return Value{}, false
}

var (
	binRe     = regexp.MustCompile(`^0b([0-1_]+)$`)
	octRe     = regexp.MustCompile(`^0([0-7_]+)$`)
	decRe     = regexp.MustCompile(`^(0|[1-9][0-9_]*)$`)
	hexRe     = regexp.MustCompile(`^0x([0-9a-fA-F_]+)$`)
	sexIntRe  = regexp.MustCompile(`^[1-9][0-9_]*(:[0-5]?[0-9])+$`)
	sexFltRe  = regexp.MustCompile(`^[0-9][0-9_]*(:[0-5]?[0-9])+\.[0-9_]*$`)
	floatRe   = regexp.MustCompile(`^([0-9][0-9_]*)?\.[0-9_]*([eE][-+][0-9]+)?$`)
	allZeroRe = regexp.MustCompile(`^0+$`)
)

// tryInt implements §6's int schema: an optional sign, then one of binary,
// octal, decimal, hex, or sexagesimal (base-60) forms. Underscores inside
// the digit run are stripped before conversion.
func tryInt(s string) (Value, bool) {
	if s == "" {
		return Value{}, false
	}
	mult := int64(1)
	body := s
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		mult = -1
		body = body[1:]
	}
	if body == "" {
		return Value{}, false
	}

	if m := binRe.FindStringSubmatch(body); m != nil {
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], "_", ""), 2, 64)
		if err == nil {
			return intValue(mult * n), true
		}
	}
	if m := octRe.FindStringSubmatch(body); m != nil {
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], "_", ""), 8, 64)
		if err == nil {
			return intValue(mult * n), true
		}
	}
	if decRe.MatchString(body) {
		n, err := strconv.ParseInt(strings.ReplaceAll(body, "_", ""), 10, 64)
		if err == nil {
			return intValue(mult * n), true
		}
	}
	if m := hexRe.FindStringSubmatch(body); m != nil {
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], "_", ""), 16, 64)
		if err == nil {
			return intValue(mult * n), true
		}
	}
	if sexIntRe.MatchString(body) {
		n := int64(0)
		for _, part := range strings.Split(body, ":") {
			d, err := strconv.ParseInt(strings.ReplaceAll(part, "_", ""), 10, 64)
			if err != nil {
				return Value{}, false
			}
			n = n*60 + d
		}
		return intValue(mult * n), true
	}
	return Value{}, false
}

var (
	nanRe = regexp.MustCompile(`^\.(nan|NaN|NAN)$`)
	infRe = regexp.MustCompile(`^\.(inf|Inf|INF)$`)
)

// tryFloat implements §6's float schema: .nan/.inf (sign permitted only on
// inf, matching the unsigned-NaN convention in the original implementation),
// the general decimal-point form, or sexagesimal with a fractional tail.
func tryFloat(s string) (Value, bool) {
	if allZeroRe.MatchString(s) {
		return floatValue(0), true
	}
	if nanRe.MatchString(s) {
		return floatValue(math.NaN()), true
	}

	mult := 1.0
	body := s
	if body != "" {
		switch body[0] {
		case '+':
			body = body[1:]
		case '-':
			mult = -1
			body = body[1:]
		}
	}

	if infRe.MatchString(body) {
		return floatValue(mult * math.Inf(1)), true
	}
	if floatRe.MatchString(body) {
		if body == "." {
			return Value{}, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(body, "_", ""), 64)
		if err == nil {
			return floatValue(mult * f), true
		}
	}
	if sexFltRe.MatchString(s) {
		parts := strings.Split(s, ":")
		acc := 0.0
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.ReplaceAll(p, "_", ""), 64)
			if err != nil {
				return Value{}, false
			}
			acc = acc*60 + v
		}
		return floatValue(acc), true
	}
	return Value{}, false
}

var (
	dateOnlyRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	datetimeRe = regexp.MustCompile(`^([0-9]{4}-[0-9]{1,2}-[0-9]{1,2})(?:[Tt]|[ \t]+)([0-9]{1,2}:[0-9]{2}:[0-9]{2})(\.[0-9]*)?[ \t]*(?:(Z)|([-+][0-9]{1,2}(?::[0-9]{2})?))?$`)
)

// tryTimestamp implements §6's timestamp schema: either a bare date (midnight
// UTC) or a full RFC-3339-ish datetime. A timestamp without an explicit zone
// defaults to UTC.
func tryTimestamp(s string) (Value, bool) {
	if dateOnlyRe.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err == nil {
			return timestampValue(t), true
		}
		return Value{}, false
	}
	m := datetimeRe.FindStringSubmatch(s)
	if m == nil {
		return Value{}, false
	}
	ymd, hms, frac, zulu := m[1], m[2], m[3], m[4]
	tz := m[5]

	ymd = zeroPadDateParts(ymd)
	hms = zeroPadTimeParts(hms)
	if frac == "" {
		frac = ""
	}

	offset := "+00:00"
	switch {
	case tz != "":
		offset = tz
		if !strings.Contains(offset, ":") {
			offset += ":00"
		}
	case zulu != "":
		offset = "+00:00"
	}

	iso := ymd + "T" + hms + frac + offset
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return Value{}, false
	}
	return timestampValue(t.UTC()), true
}

func zeroPadDateParts(ymd string) string {
	parts := strings.SplitN(ymd, "-", 3)
	if len(parts) != 3 {
		return ymd
	}
	return fmt.Sprintf("%04s-%02s-%02s", parts[0], pad2(parts[1]), pad2(parts[2]))
}

func zeroPadTimeParts(hms string) string {
	parts := strings.SplitN(hms, ":", 3)
	if len(parts) != 3 {
		return hms
	}
	return fmt.Sprintf("%s:%s:%s", pad2(parts[0]), pad2(parts[1]), pad2(parts[2]))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// tryBinary implements §6's binary schema: base64 after stripping whitespace.
// Text that is empty once whitespace is stripped is not binary.
func tryBinary(s string) (Value, bool) {
	stripped := whitespaceRe.ReplaceAllString(s, "")
	if stripped == "" {
		return Value{}, false
	}
	b, err := base64.StdEncoding.DecodeString(stripped)
	if err != nil {
		return Value{}, false
	}
	return binaryValue(b), true
}

var whitespaceRe = regexp.MustCompile(`\s`)
