// Package transport builds the outbound HTTP clients used by the search and
// completion providers.
//
// All provider traffic can optionally be routed through a SOCKS5 proxy
// (for example a corporate egress proxy or a local Tor daemon). The package
// is designed to be used with dependency injection: create a Client once at
// startup and hand its HTTP client to every provider adapter rather than
// relying on http.DefaultClient.
package transport
