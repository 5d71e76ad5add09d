package devenv

// LiveConfig holds the account used by tests that talk to the real sites,
// it lives in dev/.state/<platform>.json5 and is never committed.
type LiveConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// ExecPath of chrome, found automatically when empty.
	ExecPath string `json:"exec_path"`
	Headless bool   `json:"headless"`
}
