// Package httpserver serves the embedded live viewer, the websocket
// subscriber endpoint and the archive read API.
package httpserver
