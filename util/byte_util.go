package util

import (
	"bytes"
	"encoding/gob"
	"reflect"
)

// AppendByte returns a zero-filled byte slice of the given size.
func AppendByte(size int) []byte {
	return make([]byte, size)
}

// GetBytes gob-encodes key. Used for the record manager's pages-map
// persistence blob, where the wire format is implementation-defined.
func GetBytes(key interface{}) ([]byte, error) {
	if IsNil(key) {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(key); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PutBytes gob-decodes data into dest, the inverse of GetBytes.
func PutBytes(data []byte, dest interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(dest)
}

func IsNil(i interface{}) bool {
	vi := reflect.ValueOf(i)
	if vi.Kind() == reflect.Ptr {
		return vi.IsNil()
	}
	return vi.Kind() == reflect.Invalid
}
