// Package config resolves where the chat service lives and how the client runs.
//
// A Tree is computed once at load and never changes: it carries the asset root,
// the service base and the client identity. Settings is the on-disk
// configuration of the command line client.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/responsio/pkg/domain"
)

// ScriptName is the path suffix identifying the widget script.
// The asset root is the script URL with this suffix replaced by "/".
const ScriptName = "/javascript/responsio-1.0.0.js"

// ServicePath is appended to the root to form the service base.
const ServicePath = "responsio/"

// URL holds the asset root and the service base. Service always equals Root + ServicePath.
type URL struct {
	Root    string
	Service string
}

// Tree is the read-only client configuration.
type Tree struct {
	URL      URL
	Identity string
}

// Active reports whether the tree carries an identity.
func (t Tree) Active() bool {
	return t.Identity != ""
}

// FromRoot builds a tree from an explicit asset root.
// A missing trailing slash is added. An empty identity yields domain.ErrNoIdentity
// together with the otherwise complete tree.
func FromRoot(root, identity string) (Tree, error) {
	u, err := url.Parse(root)
	if err != nil {
		return Tree{}, fmt.Errorf("invalid root url %q: %w", root, err)
	}
	if !u.IsAbs() {
		return Tree{}, fmt.Errorf("invalid root url %q: not absolute", root)
	}
	r := u.String()
	if !strings.HasSuffix(r, "/") {
		r += "/"
	}
	return newTree(r, identity)
}

// FromScript derives the tree from the location of the widget script.
// src is resolved against pageURL, as the browser does for a script tag, and
// must end with ScriptName.
func FromScript(pageURL, src, identity string) (Tree, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Tree{}, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return Tree{}, fmt.Errorf("invalid script src %q: %w", src, err)
	}
	resolved := base.ResolveReference(ref)
	resolved.RawQuery = ""
	resolved.Fragment = ""

	full := resolved.String()
	if !strings.HasSuffix(full, ScriptName) {
		return Tree{}, fmt.Errorf("script %q does not end with %s", full, ScriptName)
	}
	return newTree(strings.TrimSuffix(full, ScriptName)+"/", identity)
}

func newTree(root, identity string) (Tree, error) {
	t := Tree{
		URL:      URL{Root: root, Service: root + ServicePath},
		Identity: identity,
	}
	if identity == "" {
		return t, domain.ErrNoIdentity
	}
	return t, nil
}

// Stylesheets returns the stylesheet references installed for style.
func (t Tree) Stylesheets(style string) []string {
	return []string{
		fmt.Sprintf("%scss/responsio-%s.css", t.URL.Root, style),
		t.URL.Root + "css/responsio-base-styles.css",
	}
}
