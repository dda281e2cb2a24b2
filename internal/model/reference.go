package model

type ValidationRequest struct {
	Reference string `json:"reference" validate:"max=64"`
}

type BatchRequest struct {
	References []string `json:"references" validate:"required,min=1,max=100,dive,max=64"`
}

type ValidationResponse struct {
	Reference string `json:"reference"`
	Valid     bool   `json:"valid"`
	Scheme    string `json:"scheme"`
	Kind      string `json:"kind"`
	Message   string `json:"message,omitempty"`
}
