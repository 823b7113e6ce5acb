package openam

// Profile is the normalized identity record derived from OpenAM user
// attributes.
type Profile struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name,omitempty"`
	Name        ProfileName `json:"name"`
	Email       string      `json:"email,omitempty"`

	// Raw retains the complete attribute set for application-specific
	// needs beyond the canonical fields.
	Raw map[string]string `json:"raw,omitempty"`
}

// ProfileName splits the user's name the way OpenAM reports it.
type ProfileName struct {
	FamilyName string `json:"family_name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
}

// NewProfile maps a raw OpenAM attribute set onto the canonical Profile
// shape: tokenid, uid, cn, sn, givenname, and mail become ID, Username,
// DisplayName, Name, and Email. Mapping the same attributes twice yields
// identical profiles.
func NewProfile(attrs map[string]string) *Profile {
	p := &Profile{
		ID:          attrs["tokenid"],
		Username:    attrs["uid"],
		DisplayName: attrs["cn"],
		Name: ProfileName{
			FamilyName: attrs["sn"],
			GivenName:  attrs["givenname"],
		},
		Email: attrs["mail"],
		Raw:   make(map[string]string, len(attrs)),
	}
	for k, v := range attrs {
		p.Raw[k] = v
	}
	return p
}
