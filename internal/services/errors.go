package services

import (
	"errors"

	"github.com/Gopher0727/GuildForge/internal/repositories"
)

var (
	ErrNotJSONFile     = errors.New("file must be a JSON file")
	ErrInvalidJSON     = errors.New("invalid JSON file")
	ErrInvalidTemplate = errors.New("error processing template")

	ErrInvalidServerName = errors.New("server name must be between 2 and 100 characters")

	// GuildAPI 实现用这些错误标记可识别的外部 API 失败
	ErrGuildPermissionDenied = errors.New("missing permission")
	ErrGuildRateLimited      = errors.New("rate limited")
)

// ErrTemplateNotFound 供 handler 判断 404
var ErrTemplateNotFound = repositories.ErrTemplateNotFound
