package domain_test

import (
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/cache"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/differ"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/filestore"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/formatter"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/history"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/parser"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/workspace"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

var (
	_ domain.WorkspaceLoader = (*workspace.Loader)(nil)
	_ domain.SourceParser    = (*parser.CSharpParser)(nil)
	_ domain.FileStore       = (*filestore.DiskStore)(nil)
	_ domain.Formatter       = (*formatter.Formatter)(nil)
	_ domain.ConfigLoader    = (*config.YAMLLoader)(nil)
	_ domain.CacheStore      = (*cache.Store)(nil)
	_ domain.RunHistory      = (*history.FileHistory)(nil)
	_ domain.GitInfo         = (*gitinfo.GitInfoAdapter)(nil)
	_ domain.Differ          = (*differ.UnifiedDiffer)(nil)
)
