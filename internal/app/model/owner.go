package model

// OwnerRef identifies who a record belongs to: a registered user or an
// anonymous session. Exactly one of the two is set.
type OwnerRef struct {
	UserID       *uint
	SessionToken string
}

// UserOwner builds an OwnerRef for a registered user.
func UserOwner(userID uint) OwnerRef {
	return OwnerRef{UserID: &userID}
}

// SessionOwner builds an OwnerRef for an anonymous session token.
func SessionOwner(token string) OwnerRef {
	return OwnerRef{SessionToken: token}
}

// IsUser reports whether the owner is a registered user.
func (o OwnerRef) IsUser() bool {
	return o.UserID != nil
}
