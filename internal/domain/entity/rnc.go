package entity

import "time"

// RncRecord contribuyente del registro de la DGII.
type RncRecord struct {
	RNC              string
	Name             string
	Category         string
	Regime           string
	Status           string
	EconomicActivity string
	Province         string
	Municipality     string
	UpdatedAt        time.Time
}
