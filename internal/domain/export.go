package domain

// ExportRow is a single row in the flat export.
// It is a denormalized view: the envelope fields of one service plus a
// one-line Summary of its subtype (patient name for secondary, event name for
// sport).
type ExportRow struct {
	ID          string
	Type        string
	OwnerID     string
	Status      string
	ServiceDate string // "2006-01-02" formatted date, empty when unset
	Kilometers  float64
	Price       float64
	Summary     string
	Vehicle     string
	CreatedAt   string // RFC3339
}
