package config

import (
	"fmt"
)

// ErrReadConfig implements "error", for the description see Error.
type ErrReadConfig struct {
	Path string
	Err  error
}

func (err ErrReadConfig) Error() string {
	return fmt.Sprintf("unable to read the configuration '%s': %v", err.Path, err.Err)
}

func (err ErrReadConfig) Unwrap() error {
	return err.Err
}

// ErrBindFlags implements "error", for the description see Error.
type ErrBindFlags struct {
	Err error
}

func (err ErrBindFlags) Error() string {
	return fmt.Sprintf("unable to bind the command line flags: %v", err.Err)
}

func (err ErrBindFlags) Unwrap() error {
	return err.Err
}

// ErrInvalidValue implements "error", for the description see Error.
type ErrInvalidValue struct {
	Key   string
	Value string
	Err   error
}

func (err ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value '%s' of setting '%s': %v", err.Value, err.Key, err.Err)
}

func (err ErrInvalidValue) Unwrap() error {
	return err.Err
}
