package entities

// Device is one entry of the account's device roster.
type Device struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
