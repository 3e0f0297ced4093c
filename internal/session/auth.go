package session

// Authenticator is the contract the out-of-scope HTTPS authentication layer
// must satisfy (§4.0 of the spec — not implemented here; the HTTP fetch,
// cookie bootstrap, and HTML scraping are explicit Non-goals). Given already
// scraped "infoNN" parameters, the orchestrator turns them into a
// connection-ready Parameters value via FromScrapedParameters.
type Authenticator interface {
	// Authenticate performs the HTTPS login and returns the scraped
	// "infoNN" parameter map along with the session fields that should be
	// written back into the credentials file.
	Authenticate(creds Credentials) (info map[string]string, updated Credentials, err error)
}
