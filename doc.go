/*
Package responsio is an embeddable chat client.

It renders a conversation on a surface, keeps a replayable history of the
rendered messages and exchanges JSON with a chat service over HTTP. The service
drives the client with lists of commands:

	{"commands": [
		{"command": "init", "data": {"style": "default", "selector": "body", "title": "Support"}},
		{"command": "restore"},
		{"command": "text", "data": "Welcome back!"}
	]}

# Lifecycle

On Run the client asks the service how to start: GET {service}init/{identity}.
The reply usually mounts the chat window (init), then either replays the stored
history (restore) or forgets it (reset). Each message the user submits is
posted to {service}chat/{identity} as {"input": "..."} and answered with more
commands, typically a single text.

# Threading

Handlers, surface events and network callbacks all run on one goroutine, the
conversation thread. Requests run elsewhere and hand their result back to it.
The methods of Client and of its Commands are safe to call from any goroutine
except the conversation thread itself.

# Usage

	tree, err := config.FromRoot("https://chat.example.com/", "visitor-42")
	if err != nil {
		log.Fatal(err)
	}

	client, err := responsio.New(ctx, tree,
		responsio.WithMedium(file.New(".responsio/storage")),
		responsio.WithSurface(terminal.New()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	log.Fatal(client.Run(ctx))

Without an identity New returns ErrInactive and nothing is exposed.
*/
package responsio
