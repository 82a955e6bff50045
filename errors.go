package scenegraph

import "errors"

var (
	ErrNameCollision      = errors.New("scenegraph: name already in use")
	ErrEmptyName          = errors.New("scenegraph: node name is empty")
	ErrUnknownNode        = errors.New("scenegraph: node not found")
	ErrUnknownEdge        = errors.New("scenegraph: edge not found")
	ErrUnresolvedEndpoint = errors.New("scenegraph: connection point not found")
	ErrInvalidEndpoint    = errors.New("scenegraph: invalid connection string")
	ErrExhaustedNamespace = errors.New("scenegraph: no unique name available")
	ErrInvalidAttribute   = errors.New("scenegraph: invalid attribute value")
	ErrImmutableAttribute = errors.New("scenegraph: attribute cannot be changed")
	ErrFileNotFound       = errors.New("scenegraph: file not found")
	ErrMalformedDocument  = errors.New("scenegraph: malformed document")
	ErrSceneNotFound      = errors.New("scenegraph: scene not found")
)

// ErrUnknownConnection is an alias of ErrUnresolvedEndpoint.
var ErrUnknownConnection = ErrUnresolvedEndpoint
