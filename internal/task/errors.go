package task

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrManifestRead = errors.New("read manifest")
	ErrNoSourceRoot = errors.New("source root is not a directory")
)

// ItemError records a work item that failed and why.
type ItemError struct {
	Item WorkItem
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Item.Action, e.Item.Source, e.Item.Destination, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e ItemError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(struct {
		WorkItem
		Error string `json:"error"`
	}{e.Item, cause})
}
