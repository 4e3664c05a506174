/*
Package storage implements the namespaced key-value store of the Responsio client.

The whole tree lives in memory and is written through to a ports.Medium as one
JSON document on every Set. The backing strategy is chosen once by probing the
medium: if it is unavailable, or stops working later, the store silently keeps
going in volatile (process-lifetime) mode for the rest of the session.
*/
package storage
