package http

// APIResponse is the envelope every /api route answers with.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field, named as the client sent it.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_COUNTRY"`
	Field   string                 `json:"field,omitempty" example:"country"`
	Message string                 `json:"message,omitempty" example:"country must be kr or us, got \"jp\""`
	Params  map[string]interface{} `json:"params,omitempty"`
}

type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}
