package fetch

import (
	"encoding/base64"
	"net/http"
)

// authMethod names one rung of the self-hosted platform's auth fallback
// chain, tried in this fixed order (spec.md §4.4).
type authMethod string

const (
	authBasicNTLM authMethod = "basic-ntlm"
	authPATBasic  authMethod = "pat-basic"
	authNegotiate authMethod = "negotiate"
)

var authMethods = []authMethod{authBasicNTLM, authPATBasic, authNegotiate}

// authenticator applies one auth scheme to an outgoing request.
type authenticator interface {
	apply(req *http.Request)
}

type basicAuth struct{ user, pass string }

func (a basicAuth) apply(req *http.Request) {
	token := base64.StdEncoding.EncodeToString([]byte(a.user + ":" + a.pass))
	req.Header.Set("Authorization", "Basic "+token)
}

// negotiateAuth is a no-op placeholder: SPNEGO/Negotiate requires a
// platform-specific GSSAPI binding that has no pure-Go equivalent in the
// pack. Requests sent with it rely on the transport's own Windows
// integrated-auth handling (when run on a domain-joined host); elsewhere it
// simply falls through to the next response in the chain like any other
// rejected method.
type negotiateAuth struct{}

func (negotiateAuth) apply(req *http.Request) {}

// buildAuth maps an auth method to a concrete authenticator given the
// credentials available, returning ok=false when that method has no usable
// credentials configured (entity.ErrNoCredentials territory — skip, don't fail).
func (c *Client) buildAuth(method authMethod) (authenticator, bool) {
	if c.creds == nil {
		if method == authNegotiate {
			return negotiateAuth{}, true
		}
		return nil, false
	}

	switch method {
	case authBasicNTLM:
		login, okLogin := c.creds.Login()
		password, okPass := c.creds.Password()
		if !okLogin || !okPass {
			return nil, false
		}
		return basicAuth{user: login, pass: password}, true

	case authPATBasic:
		pat, ok := c.creds.PAT()
		if !ok {
			return nil, false
		}
		return basicAuth{user: "", pass: pat}, true

	case authNegotiate:
		return negotiateAuth{}, true

	default:
		return nil, false
	}
}
