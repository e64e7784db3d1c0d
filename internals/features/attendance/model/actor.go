package model

// Actor: identitas pemanggil dari auth gate. Core tidak memvalidasi ulang.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

// Identity dipakai untuk kolom submitted_by / created_by.
func (a Actor) Identity() string {
	if a.Username != "" {
		return a.Username
	}
	if a.UserID != "" {
		return a.UserID
	}
	return "anonymous"
}

type Operation string

const (
	OpSubmitPresence Operation = "presence.submit"
	OpSubmitExcuse   Operation = "excuse.submit"
	OpAmendExcuse    Operation = "excuse.amend"
	OpLookupPerson   Operation = "person.lookup"
	OpReadStatus     Operation = "status.read"
	OpReadHistory    Operation = "history.read"
	OpReadReport     Operation = "report.read"
)

// Authorizer: kapabilitas eksplisit yang di-inject ke service.
type Authorizer interface {
	Can(actor Actor, op Operation) bool
}

// AuthorizerFunc adaptor fungsi biasa → Authorizer.
type AuthorizerFunc func(actor Actor, op Operation) bool

func (f AuthorizerFunc) Can(actor Actor, op Operation) bool { return f(actor, op) }

// AllowAll untuk job internal (scheduler) & test.
var AllowAll Authorizer = AuthorizerFunc(func(Actor, Operation) bool { return true })
