package config

import "time"

type API struct {
	source
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.get("API_BASE_URL", "http://localhost:8000/api")
}

// GetRequestTimeout bounds each backend call. Zero, the default, leaves
// failure detection to the transport.
func (a API) GetRequestTimeout() time.Duration {
	return a.duration("REQUEST_TIMEOUT", 0)
}

type Flow struct {
	source
}

var _ FlowConfig = Flow{}

func (f Flow) GetRegisterRedirectDelay() time.Duration {
	return f.duration("REGISTER_REDIRECT_DELAY", 2*time.Second)
}

func (f Flow) GetForgotPasswordRedirectDelay() time.Duration {
	return f.duration("FORGOT_PASSWORD_REDIRECT_DELAY", 5*time.Second)
}

func (f Flow) GetResetPasswordRedirectDelay() time.Duration {
	return f.duration("RESET_PASSWORD_REDIRECT_DELAY", 3*time.Second)
}
