package model

// Client is an address-book entry. Ids are store-assigned and immutable;
// jobs and quotes reference clients by id only, never by pointer.
type Client struct {
	ID        string `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Address   string `json:"domicilio"`
}

// FullName is the display form used on quotes and jobs at creation time.
// It is denormalized onto those records on purpose: renaming a client must
// not rewrite history.
func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
