package dto

type WorkerStartDTO struct {
	NumWorkers int `json:"num_workers" validate:"gte=0,lte=256"`
}

type WorkerResizeDTO struct {
	NumWorkers int `json:"num_workers" validate:"required,gte=1,lte=256"`
}

type WorkerStatusDTO struct {
	Running    bool   `json:"running" yaml:"running"`
	Generation uint64 `json:"generation" yaml:"generation"`
	Slots      int    `json:"slots" yaml:"slots"`
	Active     int    `json:"active" yaml:"active"`
	InFlight   int    `json:"in_flight" yaml:"in_flight"`
	Queued     int    `json:"queued" yaml:"queued"`
}
