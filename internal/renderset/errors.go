package renderset

import (
	oerrors "github.com/lightbake/lbake/internal/errors"
)

// Errors returned by collection mutations.
var (
	ErrEmptyName      = oerrors.Wrap(oerrors.ErrValidation, "render set name is empty")
	ErrDuplicateName  = oerrors.Wrap(oerrors.ErrValidation, "render set already exists")
	ErrSetNotFound    = oerrors.Wrap(oerrors.ErrNotFound, "render set")
	ErrLayerNotFound  = oerrors.Wrap(oerrors.ErrNotFound, "render layer")
	ErrObjectNotFound = oerrors.Wrap(oerrors.ErrNotFound, "object")
	ErrOutOfRange     = oerrors.Wrap(oerrors.ErrValidation, "value out of range")
)
