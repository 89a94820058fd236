package models

import "time"

type WorkOrderStatus string

const (
	WorkOrderStatusDraft      WorkOrderStatus = "draft"
	WorkOrderStatusReleased   WorkOrderStatus = "released"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

func ValidWorkOrderStatus(status WorkOrderStatus) bool {
	switch status {
	case WorkOrderStatusDraft, WorkOrderStatusReleased, WorkOrderStatusInProgress,
		WorkOrderStatusCompleted, WorkOrderStatusCancelled:
		return true
	}
	return false
}

type WorkOrder struct {
	ID          string
	OrderNumber string
	LineID      *string
	Product     string
	QtyPlanned  int
	QtyProduced int
	Status      WorkOrderStatus
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Attachment struct {
	ID          string
	WorkOrderID string
	FileName    string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	UploadedBy  string
	CreatedAt   time.Time
}

type QualityResult string

const (
	QualityResultPass   QualityResult = "pass"
	QualityResultFail   QualityResult = "fail"
	QualityResultRework QualityResult = "rework"
)

func ValidQualityResult(result QualityResult) bool {
	switch result {
	case QualityResultPass, QualityResultFail, QualityResultRework:
		return true
	}
	return false
}

type QualityCheck struct {
	ID          string
	WorkOrderID string
	CheckedBy   string
	Result      QualityResult
	Notes       string
	CreatedAt   time.Time
}
