package engine

import (
	"errors"
	"fmt"

	"enum-sync/internal/schema"
)

// ErrInvalidRemap is returned when a removed member is remapped to a member
// the enum will not have.
var ErrInvalidRemap = errors.New("invalid remap")

// ErrTemporaryType is returned when the type a rebuild goes through cannot
// be created under its name.
var ErrTemporaryType = errors.New("temporary type name unavailable")

// StaleReferenceError reports a dependent column that no longer exists.
// Skipping it would yield a migration that leaves the column behind.
type StaleReferenceError struct {
	Enum schema.EnumName
	Ref  schema.TableReference
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("enum %s: referenced column %s no longer exists", e.Enum, e.Ref)
}
