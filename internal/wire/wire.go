// Package wire holds the JSON value codecs shared by the backend client and
// the local API. Backend payloads are loosely typed: IDs and amounts arrive
// as either numbers or strings.
package wire

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeID reads a string or number ID. Null yields "".
func DecodeID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Null:
		return "", d.Null()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	case jx.String:
		return d.Str()
	default:
		return "", errors.Errorf("id: unexpected %s", d.Next())
	}
}

// DecodeDecimal reads a number or numeric string. Null and "" yield zero.
func DecodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Null:
		return decimal.Zero, d.Null()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return decimal.Zero, nil
		}
	default:
		return decimal.Zero, errors.Errorf("decimal: unexpected %s", d.Next())
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "decimal %q", raw)
	}
	return v, nil
}

// DecodeInt reads an integer given as a number or numeric string. A zero
// fractional part such as 5.0 is accepted. Null yields zero.
func DecodeInt(d *jx.Decoder) (int, error) {
	switch d.Next() {
	case jx.Null:
		return 0, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return 0, errors.Wrapf(err, "int %q", s)
		}
		if !v.IsInteger() {
			return 0, errors.Errorf("int %q: fractional part", s)
		}
		return int(v.IntPart()), nil
	default:
		n, err := d.Num()
		if err != nil {
			return 0, err
		}
		v, err := n.Int64()
		if err != nil {
			return 0, errors.Wrapf(err, "int %s", n.String())
		}
		return int(v), nil
	}
}

// timeLayouts are the formats the backend uses for dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses a backend date string.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized time %q", s)
}

// DecodeTime reads a date string. Null and "" yield the zero time.
func DecodeTime(d *jx.Decoder) (time.Time, error) {
	if d.Next() == jx.Null {
		return time.Time{}, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTime(s)
}

// DecodeString reads a string, treating null as "".
func DecodeString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// EncodeID writes a numeric ID as a number, any other ID as a string and
// "" as null.
func EncodeID(e *jx.Encoder, id string) {
	switch {
	case id == "":
		e.Null()
	case isDigits(id):
		e.Num(jx.Num(id))
	default:
		e.Str(id)
	}
}

// EncodeDecimal writes v as a JSON number.
func EncodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

// EncodeMoney writes v as a JSON number with two decimal places.
func EncodeMoney(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.StringFixed(2)))
}

// EncodeTime writes t as RFC 3339 in UTC, or null for the zero time.
func EncodeTime(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func isDigits(s string) bool {
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
