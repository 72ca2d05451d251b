package protocol

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in for encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Decode reads one JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

// Encode writes v to w as JSON.
func Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
