package dto

type APIError struct {
	Error  string  `json:"error"`
	Notice *Notice `json:"notice,omitempty"`
}

type APISuccessAny struct {
	Data interface{} `json:"data"`
}
