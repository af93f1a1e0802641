package dtos

import "time"

// SyncReport is the outcome of flushing fallback products into the primary store.
type SyncReport struct {
	Pending     int         `json:"pendentes"`
	Flushed     int         `json:"sincronizados"`
	Failed      int         `json:"falhas"`
	Errors      []SyncError `json:"erros"`
	StartedAt   time.Time   `json:"iniciadoEm"`
	CompletedAt time.Time   `json:"concluidoEm"`
}

// SyncError describes one product that could not be flushed; it stays pending.
type SyncError struct {
	ProductID string `json:"produtoId"`
	Name      string `json:"nome"`
	Message   string `json:"mensagem"`
}
