// Package http implements the HTTP transport layer: thin chi handlers that
// parse and validate requests, delegate to the service layer, and translate
// service errors into RFC 7807 problem responses. Handlers own their routes
// via Routes() and carry no business logic.
package http
