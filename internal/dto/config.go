package dto

type ConfigSetDTO struct {
	Key   string `json:"key" validate:"required"`
	Value int    `json:"value"`
}
