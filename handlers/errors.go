package handlers

import "fmt"

// MissingCategoryError is returned for a post when neither the channel nor the
// message names a logbook category. Its message is meant for the user.
type MissingCategoryError struct{}

func (e *MissingCategoryError) Error() string {
	return "Posting to eLog requires a category indicated by " + CategoryCommand + " [categoryName]"
}

// MalformedEntryIDError is returned when a fetch command is not followed by
// an entry number.
type MalformedEntryIDError struct {
	Input string
	Err   error
}

func (e *MalformedEntryIDError) Error() string {
	return fmt.Sprintf("%q is not an entry number, use %s [entryID]", e.Input, GetCommand)
}

func (e *MalformedEntryIDError) Unwrap() error {
	return e.Err
}
