package model

import "errors"

var (
	// ErrDimension reports latents or documents whose shape does not match
	// the topic count, the vocabulary or the batch size.
	ErrDimension = errors.New("model: dimension mismatch")
	// ErrConfiguration reports invalid hyperparameters or call settings.
	ErrConfiguration = errors.New("model: invalid configuration")
	ErrEmptyBatch    = errors.New("model: empty batch")
)
