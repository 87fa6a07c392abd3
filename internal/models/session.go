package models

// Session is the normalized view of a signed-in admin, mirrored from the
// identity-provider token claims.
type Session struct {
	DisplayName   string `json:"displayName,omitempty"`
	UID           string `json:"uid"`
	Institute     string `json:"institute"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	AccessToken   string `json:"accessToken"`
}
