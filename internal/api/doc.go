// Package api handles incoming HTTP requests for the lesson service. It
// decodes and validates requests, calls the services and maps their
// results and errors onto JSON responses.
package api
