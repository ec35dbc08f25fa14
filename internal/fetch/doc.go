// Package fetch reads documents from local files and remote URLs with a
// size limit.
//
// Remote fetches only use HTTPS and refuse loopback and private network
// hosts unless DOCMETRICS_ALLOW_PRIVATE_URLS is set. NewProxyClient routes
// downloads through a SOCKS5 proxy such as a local Tor daemon.
package fetch
