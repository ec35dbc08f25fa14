// Package tor runs an embedded Tor daemon for downloading documents over
// the Tor network and validates onion service host names.
//
// The daemon is started with tornago and only its SOCKS5 port is used;
// the fetch package routes requests through it.
package tor
