package utils

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Unmarshal decodes the YAML file at path into value. Fields absent from the
// file keep whatever value already holds.
func Unmarshal[T any](value *T, path string) (retErr error) {
	file, openFileErr := os.Open(path)
	if openFileErr != nil {
		return openFileErr
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			if retErr == nil {
				// Return close error if no other error
				retErr = closeErr
			} else {
				retErr = errors.Join(retErr, closeErr)
			}
		}
	}()

	fileContents, readFileErr := io.ReadAll(file)
	if readFileErr != nil {
		return readFileErr
	}

	decoder := yaml.NewDecoder(bytes.NewReader(fileContents))
	decoder.KnownFields(true)
	if unmarshalErr := decoder.Decode(value); unmarshalErr != nil && !errors.Is(unmarshalErr, io.EOF) {
		return unmarshalErr
	}

	return nil
}
