package models

// DefaultProjectName is the name of the project created for every new
// user. The default project cannot be renamed or removed.
const DefaultProjectName = "Default"

// UserKind is a user's role within a project.
type UserKind int

const (
	UserKindAdmin UserKind = iota
	UserKindGuest
)

func (k UserKind) String() string {
	switch k {
	case UserKindAdmin:
		return "admin"
	case UserKindGuest:
		return "guest"
	}
	return "unknown"
}

// Project groups tasks and carries access control: the creator and
// invited admins have full access, guests read-only.
type Project struct {
	PID     int64
	Creator int64
	Name    string
	Admins  []int64
	Guests  []int64
}

// KindOf returns the role uid holds in the project, or nil for strangers.
// The creator counts as an admin.
func (p *Project) KindOf(uid int64) *UserKind {
	if p.Creator == uid || containsUID(p.Admins, uid) {
		k := UserKindAdmin
		return &k
	}
	if containsUID(p.Guests, uid) {
		k := UserKindGuest
		return &k
	}
	return nil
}

func containsUID(uids []int64, uid int64) bool {
	for _, u := range uids {
		if u == uid {
			return true
		}
	}
	return false
}
