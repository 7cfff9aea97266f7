package model

import "errors"

// Model construction errors.
var (
	// ErrNoDiscriminatorFound is returned when the variants of a tagged union
	// share no primitive constant property.
	ErrNoDiscriminatorFound = errors.New("specgen: no discriminator found")

	// ErrDuplicateDiscriminatorValues is returned when every discriminator
	// candidate repeats a value across variants.
	ErrDuplicateDiscriminatorValues = errors.New("specgen: duplicate discriminator values")

	// ErrInvalidConstant is returned when a constant or default value does not
	// fit its base model.
	ErrInvalidConstant = errors.New("specgen: value does not match model")
)

// Identity errors.
var (
	// ErrDuplicateID is returned when two distinct models claim the same id.
	ErrDuplicateID = errors.New("specgen: duplicate model id")

	// ErrReferenceNotFound is returned when a model was never registered under
	// an id, usually because it is not reachable from any root.
	ErrReferenceNotFound = errors.New("specgen: model was never registered under an id")
)

// Route structure errors.
var (
	ErrDuplicateResponseStatus = errors.New("specgen: duplicate response status")
	ErrMultipleRequestBodies   = errors.New("specgen: multiple request bodies")
	ErrDuplicateRoutePath      = errors.New("specgen: duplicate route path")
	ErrMergeConflict           = errors.New("specgen: conflicting operation fields")
)

// Emission errors.
var (
	// ErrUnknownModelKind is returned by an emitter that has no rule for a kind.
	ErrUnknownModelKind = errors.New("specgen: unknown model kind")

	// ErrSecurityNotFound marks a requirement with no matching provider. It is
	// reported as a warning and never aborts a run.
	ErrSecurityNotFound = errors.New("specgen: security provider not found")
)
