/*
Package domain contains the core protocol models of the Responsio chat client.

It defines the wire shapes exchanged with the chat service and the markup of the
fragments kept in the conversation history. This package is kept pure and free
of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Command: A server-issued instruction naming a client-side handler and its payload.
  - Envelope: The only response shape accepted at the command layer ({commands: [...]}).
  - InitOptions: Presentation settings delivered by the "init" command.
  - Fragment: Pre-rendered markup for one chat bubble, stored verbatim for replay.
*/
package domain
