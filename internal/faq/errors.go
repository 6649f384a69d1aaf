package faq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianshen/rhobot/internal/output"
)

// Validation errors for new entries.
var (
	ErrTitleTooLong = fmt.Errorf("FAQ title too long (must be %d characters or shorter)", output.TitleLimit)
	ErrBodyTooLong  = fmt.Errorf("FAQ body too long (must be %d characters or shorter)", output.DescriptionLimit)
)

// ErrUnknownFormat is returned for an export format other than JSON or YAML.
var ErrUnknownFormat = errors.New("unknown FAQ dump format")

// NotFoundError reports a name with no exact or close match on the server.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find %s or any similarly named tags in FAQ tags. "+
		"Would you like to search [the wiki](%s)?",
		output.EscapeFormatting(e.Name), WikiSearchURL(e.Name))
}

// WikiSearchURL is the wiki search page suggested when a tag is missing.
func WikiSearchURL(name string) string {
	return "https://wiki.factorio.com/index.php?search=" + strings.ReplaceAll(name, " ", "%20")
}

// NotInDatabaseError reports an entry that the title cache or a link
// pointed at but the database no longer holds.
type NotInDatabaseError struct{ Name string }

func (e *NotInDatabaseError) Error() string {
	return fmt.Sprintf("Could not get FAQ entry %s from database", e.Name)
}

// AlreadyExistsError is returned when a link would shadow an existing entry.
type AlreadyExistsError struct{ Name string }

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("Error: An faq entry with title %s already exists", e.Name)
}

// DatabaseError wraps a failure of the backing store.
type DatabaseError struct{ Err error }

func (e *DatabaseError) Error() string { return "FAQ database error: " + e.Err.Error() }

func (e *DatabaseError) Unwrap() error { return e.Err }

func dbError(err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Err: err}
}
