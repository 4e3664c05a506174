/*
Package ports defines the driven ports (interfaces) of the Responsio client.

These interfaces decouple the conversation core from external implementations,
allowing it to work with various storage media, transports and rendering surfaces.

# Key Interfaces

  - Medium: Raw persistence of the namespaced document (file, Redis, SQLite, memory).
  - KeyValueStore: Nested-key access to the persisted tree.
  - Transport: Request/response exchange with the chat service.
  - Surface: The rendering collaborator (HTML document, terminal, ...).
  - Scheduler: Serializes callbacks onto the single conversation thread.
*/
package ports
