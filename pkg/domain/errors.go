package domain

import "errors"

// ErrNoIdentity is returned when the client is configured without an identity.
// Without one the client does not activate.
var ErrNoIdentity = errors.New("no identity configured")

// ErrNoAttachment is returned when the surface has no attachment point for the chat window.
var ErrNoAttachment = errors.New("invalid window attachment point")

// ErrAlreadyInitialized is returned when "init" is delivered to a mounted conversation.
var ErrAlreadyInitialized = errors.New("conversation already initialized")

// ErrInvalidResponse is returned when a command list is not an ordered sequence.
var ErrInvalidResponse = errors.New("invalid response")

// ErrInvalidCommand is returned when a list entry is not a command descriptor.
var ErrInvalidCommand = errors.New("invalid command")

// ErrUnknownCommand is returned when no handler is registered for a command name.
var ErrUnknownCommand = errors.New("unknown command")

// ErrCommandNotAllowed is returned when registering a handler outside the closed command set.
var ErrCommandNotAllowed = errors.New("command not allowed")

// ErrDuplicateCommand is returned when a handler is registered twice for the same name.
var ErrDuplicateCommand = errors.New("command already registered")

// ErrNotFound is returned by storage media when no document exists for a namespace.
var ErrNotFound = errors.New("document not found")

// ErrEmptyPath is returned when a non-mapping value is assigned to the whole storage tree.
var ErrEmptyPath = errors.New("empty storage path")
