package domain

// Address is the single postal address attached to a user.
type Address struct {
	FirstName string
	LastName  string
	Street    string
	City      string
	Country   string
}
