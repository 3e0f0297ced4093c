package main

import (
	"fmt"

	"github.com/kvmconsole/ilo2console/internal/session"
)

// httpAuthenticator is the default session.Authenticator. The HTTPS login
// page fetch, cookie bootstrap, and HTML scraping into "infoNN" values live
// outside this module; callers that need a working console connection
// should provide their own Authenticate implementation (for example, one
// that re-uses a cookie and info map already captured by a browser
// session) and use it in place of newHTTPAuthenticator in run.
type httpAuthenticator struct{}

func newHTTPAuthenticator() session.Authenticator {
	return httpAuthenticator{}
}

func (httpAuthenticator) Authenticate(creds session.Credentials) (map[string]string, session.Credentials, error) {
	return nil, creds, fmt.Errorf("auth: no HTTPS authenticator configured for %s; supply scraped info parameters directly", creds.Hostname)
}
