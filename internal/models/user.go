package models

// User is a simple identity record. Online mirrors whether the user holds
// an active console session.
type User struct {
	UID    int64
	Login  string
	Online bool
}
