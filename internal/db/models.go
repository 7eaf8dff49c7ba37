package db

import "github.com/jeniistore/jenii-admin/internal/models"

type Order = models.Order
type OrderItem = models.OrderItem
type OrderStatus = models.OrderStatus
type HistoryEntry = models.HistoryEntry
type CancellationRequest = models.CancellationRequest
type CancellationStatus = models.CancellationStatus

const (
	StatusPending      = models.StatusPending
	StatusConfirmed    = models.StatusConfirmed
	StatusProcessing   = models.StatusProcessing
	StatusShipped      = models.StatusShipped
	StatusDelivered    = models.StatusDelivered
	StatusCancelled    = models.StatusCancelled
	StatusReturned     = models.StatusReturned
	StatusRTOInitiated = models.StatusRTOInitiated
)
