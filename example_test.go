package responsio_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/responsio"
	"github.com/aretw0/responsio/pkg/config"
)

// A client configured without an identity stays inactive.
func ExampleNew_inactive() {
	tree, _ := config.FromRoot("https://chat.example.com/", "")

	_, err := responsio.New(context.Background(), tree)
	fmt.Println(errors.Is(err, responsio.ErrInactive))
	// Output: true
}

// Storage addresses nested values with dotted names.
func ExampleClient_Storage() {
	tree, err := config.FromRoot("https://chat.example.com/", "visitor-42")
	if err != nil {
		log.Fatal(err)
	}
	client, err := responsio.New(context.Background(), tree)
	if err != nil {
		log.Fatal(err)
	}

	store := client.Storage()
	if err := store.Set("prefs.window.open", true); err != nil {
		log.Fatal(err)
	}
	fmt.Println(store.Get("prefs.window.open", false))
	fmt.Println(store.Get("prefs.window.size", "medium"))
	fmt.Println(store.Get("prefs", nil))
	// Output:
	// true
	// medium
	// map[window:map[open:true]]
}
