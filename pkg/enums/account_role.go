package enums

import "fmt"

// AccountRole is the closed set of roles an account can hold.
type AccountRole string

const (
	AccountRoleCCAgent    AccountRole = "cc_agent"
	AccountRoleCROAgent   AccountRole = "cro_agent"
	AccountRoleSuperAdmin AccountRole = "super_admin"
)

var validAccountRoles = []AccountRole{
	AccountRoleCCAgent,
	AccountRoleCROAgent,
	AccountRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r AccountRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AccountRole.
func (r AccountRole) IsValid() bool {
	switch r {
	case AccountRoleCCAgent, AccountRoleCROAgent, AccountRoleSuperAdmin:
		return true
	default:
		return false
	}
}

// CanLogCalls reports whether the role may write to the call log.
func (r AccountRole) CanLogCalls() bool {
	switch r {
	case AccountRoleCCAgent, AccountRoleSuperAdmin:
		return true
	case AccountRoleCROAgent:
		return false
	default:
		return false
	}
}

// ReceivesLeads reports whether leads may be transferred to the role.
func (r AccountRole) ReceivesLeads() bool {
	switch r {
	case AccountRoleCROAgent:
		return true
	case AccountRoleCCAgent, AccountRoleSuperAdmin:
		return false
	default:
		return false
	}
}

// TracksDailyTasks reports whether the role gets a daily task row.
func (r AccountRole) TracksDailyTasks() bool {
	switch r {
	case AccountRoleCCAgent:
		return true
	case AccountRoleCROAgent, AccountRoleSuperAdmin:
		return false
	default:
		return false
	}
}

// ParseAccountRole converts raw input into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
