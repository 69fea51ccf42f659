package common

import (
	"fmt"
	"os"
	"unsafe"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SliceToBytes reinterprets a slice of fixed-size values as raw bytes for GPU uploads.
// The returned slice shares memory with data.
//
// Parameters:
//   - data: source slice of any fixed-size element type
//
// Returns:
//   - []byte: byte view of data, or nil if data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), size)
}

// SizeOf returns the in-memory size of one T in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// ReadFile reads a whole text file, typically shader source.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - string: the file contents
//   - error: a wrapped error when the file cannot be read
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
