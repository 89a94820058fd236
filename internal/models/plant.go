package models

import "time"

type LineStatus string

const (
	LineStatusActive      LineStatus = "active"
	LineStatusStopped     LineStatus = "stopped"
	LineStatusMaintenance LineStatus = "maintenance"
)

func ValidLineStatus(status LineStatus) bool {
	switch status {
	case LineStatusActive, LineStatusStopped, LineStatusMaintenance:
		return true
	}
	return false
}

type ProductionLine struct {
	ID          string
	Name        string
	Description string
	Status      LineStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EquipmentStatus string

const (
	EquipmentStatusRunning     EquipmentStatus = "running"
	EquipmentStatusIdle        EquipmentStatus = "idle"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusFault       EquipmentStatus = "fault"
)

func ValidEquipmentStatus(status EquipmentStatus) bool {
	switch status {
	case EquipmentStatusRunning, EquipmentStatusIdle, EquipmentStatusMaintenance, EquipmentStatusFault:
		return true
	}
	return false
}

type Equipment struct {
	ID        string
	LineID    string
	Name      string
	Model     string
	Status    EquipmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
