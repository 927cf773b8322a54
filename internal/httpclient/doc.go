// Package httpclient provides the shared HTTP session for all outbound requests.
//
// Every request carries the configured User-Agent; some mirror sites reject
// clients that send none. Responses with a non-OK status are turned into
// errors carrying the URL and status text.
package httpclient
