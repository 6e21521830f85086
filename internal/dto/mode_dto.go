package dto

type ResolveModeRequest struct {
	Mode      string                 `json:"mode" validate:"omitempty,oneof=fast balanced accurate"`
	Overrides map[string]interface{} `json:"overrides"`
}

type RecommendModeRequest struct {
	Query            string `json:"query" validate:"required"`
	RequiresAccuracy bool   `json:"requires_accuracy"`
	IsComparison     bool   `json:"is_comparison"`
	IsComplex        bool   `json:"is_complex"`
}
