package roles

import (
	"sort"
	"strings"
)

// Role is the server-assigned classification of a user. The canonical form is
// lowercase with surrounding whitespace removed; use Normalize to obtain it.
type Role string

const (
	Instructor Role = "instructor" // Reaches the instructor dashboard
	Admin      Role = "admin"      // Reaches the administrative dashboard
	Manager    Role = "manager"    // Reaches the administrative dashboard
	Unknown    Role = ""           // Role not (yet) resolved
)

// Normalize converts a raw role value into its canonical form.
// Every point that reads or writes a role goes through here.
func Normalize(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether the role is one the application routes.
func (r Role) Known() bool {
	switch Normalize(string(r)) {
	case Instructor, Admin, Manager:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// AllowSet is the set of roles a protected view accepts.
type AllowSet map[Role]struct{}
type nullValue = struct{}

// NewAllowSet builds an AllowSet, normalising every member. Blank entries are ignored.
func NewAllowSet(roles ...string) AllowSet {
	set := make(AllowSet, len(roles))
	for _, r := range roles {
		role := Normalize(r)
		if role == Unknown {
			continue
		}
		set[role] = nullValue{}
	}
	return set
}

// Contains compares case-insensitively against the set.
func (a AllowSet) Contains(role Role) bool {
	role = Normalize(string(role))
	if role == Unknown {
		return false
	}
	_, ok := a[role]
	return ok
}

func (a AllowSet) String() string {
	var members []string
	for k := range a {
		members = append(members, string(k))
	}
	sort.Strings(members)
	return strings.Join(members, ", ")
}

var (
	// InstructorViews gates the instructor dashboard.
	InstructorViews = NewAllowSet(string(Instructor))
	// AdminViews gates the administrative dashboard.
	AdminViews = NewAllowSet(string(Admin), string(Manager))
)
