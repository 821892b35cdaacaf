package handler

import (
	"github.com/Woeter69/algo/internal/app/chat"
	"github.com/Woeter69/algo/internal/app/storage"
	"github.com/Woeter69/algo/internal/app/store"
	"github.com/Woeter69/algo/internal/configs"
)

// AppDeps bundles the shared collaborators handed to every handler.
// Storage is nil when no S3 settings are configured; handlers that need
// it degrade or reject accordingly.
type AppDeps struct {
	Hub     *chat.Hub
	Gateway *chat.Gateway
	Store   *store.Store
	Storage storage.StorageService
	Config  *configs.AppConfig
}
