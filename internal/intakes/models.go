package intakes

// WaterResponse is the daily water counter with its derived volume.
// Liters is presentation only: count times the serving size.
type WaterResponse struct {
	Date   string  `json:"date"`
	Count  int     `json:"count"`
	Liters float64 `json:"liters"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
