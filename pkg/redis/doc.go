// Package redis provides connection bootstrap and health checking for the
// Redis-backed change-stream transport.
package redis
