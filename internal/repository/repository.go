package repository

import (
	"context"
	"errors"

	"github.com/ghaggin/coachportal/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository serves the resources shared with clients on the dashboard.
type Repository interface {
	ListFiles(ctx context.Context) ([]model.SharedFile, error)
	GetFile(ctx context.Context, id string) (*model.SharedFile, error)
}
