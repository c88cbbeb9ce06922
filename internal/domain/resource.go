package domain

// Resource is one row of the read-only resource dataset. The dataset is
// loaded once at startup and treated as an immutable external table.
type Resource struct {
	Category         string  `csv:"resource_category"`
	OrganizationName string  `csv:"organization_name"`
	Address          string  `csv:"address"`
	PhoneNumber      string  `csv:"phone_number"`
	Longitude        float64 `csv:"longitude"`
	Latitude         float64 `csv:"latitude"`
}
