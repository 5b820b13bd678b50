package server

import (
	"net/http"
	"strings"

	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/api"
)

const OAuthMetadataPath = "/.well-known/oauth-authorization-server"

// BaseURL is the URL the request reached the server at, with a trailing
// slash: "<scheme>://<host>[:<port>]/".
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	return scheme + "://" + host + "/"
}

// Issuer derives the OAuth issuer from the request alone.
func Issuer(r *http.Request) string {
	return strings.TrimRight(BaseURL(r), "/")
}

func getOAuthMetadata(_ noBody, _ any, r *http.Request) (api.OAuthMetadata, error) {
	return api.OAuthMetadata{Issuer: Issuer(r)}, nil
}
