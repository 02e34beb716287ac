package assistant

// CallerProfile identifies the member speaking to the assistant. It is
// resolved once per turn by the member store and stays immutable for the
// remainder of that turn; every tool dispatch is implicitly scoped to it.
type CallerProfile struct {
	MemberID    int64
	HouseholdID int64
	RoleID      int64
	RoleName    string
	DisplayName string
}

// Valid reports whether the profile carries the minimum identity a turn needs.
func (p CallerProfile) Valid() bool {
	return p.MemberID > 0 && p.HouseholdID > 0
}
