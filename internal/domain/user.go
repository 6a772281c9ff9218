package domain

// UserSession is the minimal identity-provider record the client keeps.
// It is the sole persisted entity: serialized to the state file on
// login/signup so a restart can rehydrate auth state without
// re-authenticating. Its presence on disk is what "logged in" means.
type UserSession struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}
