package events

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Accepted is the response to a stored submission.
func Accepted() Response {
	return respond(http.StatusAccepted, "")
}

// Failure maps err to a response. Caller-fault errors carry their reason;
// anything else becomes a generic 500.
func Failure(err error) Response {
	var e *Error
	if errors.As(err, &e) && e.Kind.ClientFault() {
		return respond(http.StatusBadRequest, e.Reason)
	}
	return respond(http.StatusInternalServerError, internalErrorReason)
}

// Records renders recs as a JSON array.
func Records(recs []Record) (Response, error) {
	body, err := RenderRecords(recs)
	if err != nil {
		return Response{}, err
	}
	return respond(http.StatusOK, string(body)), nil
}

// RenderRecords encodes recs with stored numbers normalized: integral values
// become integer tokens, the rest float tokens.
func RenderRecords(recs []Record) ([]byte, error) {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		rec.Data = NormalizeNumbers(rec.Data)
		out[i] = rec
	}
	return json.Marshal(out)
}

// NormalizeNumbers walks a decoded JSON value and rewrites every number.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = NormalizeNumbers(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = NormalizeNumbers(val)
		}
		return l
	case json.Number:
		return normalizeNumber(string(t))
	case float64:
		return normalizeNumber(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return v
	}
}

// maxIntegerDigits bounds how far an integral value with an exponent is
// expanded. Longer values keep their stored text.
const maxIntegerDigits = 64

func normalizeNumber(s string) json.Number {
	neg, digits, exp, ok := splitNumber(s)
	if !ok {
		return json.Number(s)
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}
	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	digits = trimmed

	if exp >= 0 {
		if len(digits)+exp > maxIntegerDigits {
			return json.Number(s)
		}
		out := digits + strings.Repeat("0", exp)
		if neg {
			out = "-" + out
		}
		return json.Number(out)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 || math.IsInf(f, 0) {
		return json.Number(s)
	}
	out := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return json.Number(out)
}

// splitNumber breaks a JSON number into its sign, significant digits and the
// power of ten they are scaled by.
func splitNumber(s string) (neg bool, digits string, exp int, ok bool) {
	rest := s
	if strings.HasPrefix(rest, "-") {
		neg, rest = true, rest[1:]
	}
	mant, expPart := rest, ""
	if i := strings.IndexAny(rest, "eE"); i >= 0 {
		mant, expPart = rest[:i], rest[i+1:]
	}
	intPart, frac, _ := strings.Cut(mant, ".")
	if intPart == "" || !allDigits(intPart) || !allDigits(frac) {
		return false, "", 0, false
	}
	if expPart != "" {
		e, err := strconv.Atoi(expPart)
		if err != nil || e > math.MaxInt32 || e < math.MinInt32 {
			return false, "", 0, false
		}
		exp = e
	}
	return neg, intPart + frac, exp - len(frac), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
