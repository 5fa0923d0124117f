package events

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseBody decodes the submission body, undoing base64 transport encoding
// first when the request says so. The decoded value is returned as-is;
// numbers are kept as json.Number.
func ParseBody(req Request) (any, error) {
	if req.Body == "" {
		return nil, newError(MissingBody, reasonMissingBody, nil)
	}

	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, newError(MalformedEncoding, fmt.Sprintf("Couldn't decode base64 body (%s)", err), err)
		}
		raw = decoded
	}

	v, err := decodeJSON(raw)
	if err != nil {
		return nil, newError(MalformedJSON, fmt.Sprintf("Couldn't decode JSON (%s)", err), err)
	}
	return v, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}
