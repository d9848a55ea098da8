package model

// Admin is the back-office user returned on login.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DisplayName returns the admin's name, or their email when unnamed.
func (a Admin) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}
