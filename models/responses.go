package models

// MessageResponse is the uniform JSON envelope for human-readable outcomes,
// both errors and confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a freshly issued bearer token back to the client.
type TokenResponse struct {
	Token string `json:"token"`
}

// Pagination describes the page window of a listing response.
type Pagination struct {
	// Total is the number of records matching the filter across all pages.
	Total int64 `json:"total"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	// TotalPages is Total divided by Limit, rounded up.
	TotalPages int64 `json:"totalPages"`
}

// ShipmentList is the response envelope for a paged shipment listing.
type ShipmentList struct {
	Data       []Shipment `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ShipmentDetail is a shipment together with its full history log,
// newest entry first.
type ShipmentDetail struct {
	Shipment
	History []HistoryEntry `json:"history"`
}
