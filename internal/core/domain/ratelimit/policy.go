package ratelimit

import "time"

// Policy is the per-endpoint quota: at most Limit requests inside one
// fixed Window.
type Policy struct {
	Limit  int           `json:"limit"`
	Window time.Duration `json:"window"`
}

// Known endpoint names. Callers pick one of these when asking for a
// decision; anything else falls back to the default policy.
const (
	EndpointAPIGeneral    = "api_general"
	EndpointLogin         = "login_rate"
	EndpointRegister      = "register_rate"
	EndpointPasswordReset = "password_reset_rate"
	EndpointProfileUpdate = "profile_update_rate"
	EndpointUserUUID      = "user_uuid_rate"
	EndpointDataFetch     = "data_fetch_rate"
	EndpointDataUpload    = "data_upload_rate"
	EndpointAPISearch     = "api_search_rate"
	EndpointAPIUserAuth   = "api_user_auth_rate"
)

// DefaultPolicy applies to endpoint names with no explicit entry, so
// an unmapped name never blocks a caller.
var DefaultPolicy = Policy{Limit: 50, Window: 60 * time.Minute}

// PolicyTable maps endpoint names to policies. It is immutable after
// construction; Lookup is side-effect-free.
type PolicyTable struct {
	policies map[string]Policy
	fallback Policy
}

func defaultPolicies() map[string]Policy {
	return map[string]Policy{
		EndpointAPIGeneral:    {Limit: 10, Window: 2 * time.Minute},
		EndpointLogin:         {Limit: 5, Window: 5 * time.Minute},
		EndpointRegister:      {Limit: 5, Window: 10 * time.Minute},
		EndpointPasswordReset: {Limit: 5, Window: 10 * time.Minute},
		EndpointProfileUpdate: {Limit: 20, Window: 60 * time.Minute},
		EndpointUserUUID:      {Limit: 5, Window: time.Minute},
		EndpointDataFetch:     {Limit: 50, Window: 60 * time.Minute},
		EndpointDataUpload:    {Limit: 30, Window: 60 * time.Minute},
		EndpointAPISearch:     {Limit: 20, Window: 10 * time.Minute},
		EndpointAPIUserAuth:   {Limit: 10, Window: 5 * time.Minute},
	}
}

// NewPolicyTable builds the table from the built-in endpoint set,
// with optional per-endpoint overrides applied on top.
func NewPolicyTable(overrides map[string]Policy) *PolicyTable {
	policies := defaultPolicies()
	for endpoint, p := range overrides {
		if p.Limit > 0 && p.Window > 0 {
			policies[endpoint] = p
		}
	}
	return &PolicyTable{policies: policies, fallback: DefaultPolicy}
}

// Lookup returns the policy for an endpoint name, or the default
// policy when the name is unrecognized.
func (t *PolicyTable) Lookup(endpoint string) Policy {
	if p, ok := t.policies[endpoint]; ok {
		return p
	}
	return t.fallback
}

// Endpoints lists the configured endpoint names.
func (t *PolicyTable) Endpoints() []string {
	names := make([]string, 0, len(t.policies))
	for name := range t.policies {
		names = append(names, name)
	}
	return names
}
