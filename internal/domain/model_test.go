package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

func TestMigrationReport_Tally(t *testing.T) {
	r := &domain.MigrationReport{
		Files: []domain.FileResult{
			{
				Path:      "ATests.cs",
				Status:    domain.StatusChanged,
				Formatted: true,
				Changes: []migrate.Change{
					{Kind: migrate.ChangeUsing},
					{Kind: migrate.ChangeFixture},
					{Kind: migrate.ChangeTest},
					{Kind: migrate.ChangeTest},
				},
			},
			{Path: "BTests.cs", Status: domain.StatusUnchanged, Formatted: true},
			{Path: "CTests.cs", Status: domain.StatusCached},
			{Path: "DTests.cs", Status: domain.StatusFailed, Error: "syntax error"},
			{Path: "Helper.cs", Status: domain.StatusUnchanged},
		},
	}
	r.Tally()

	assert.Equal(t, domain.Summary{
		Files:     5,
		Changed:   1,
		Formatted: 2,
		Cached:    1,
		Failed:    1,
		Fixtures:  1,
		Tests:     2,
	}, r.Summary)
}

func TestMigrationReport_TallyEmpty(t *testing.T) {
	r := &domain.MigrationReport{}
	r.Tally()
	assert.Equal(t, domain.Summary{}, r.Summary)
}

func TestEntryFor(t *testing.T) {
	r := &domain.MigrationReport{
		RunID:      "run-1",
		Descriptor: "/src/Shop.sln",
		Target:     domain.TargetNUnit,
		DryRun:     true,
		CommitHash: "abc1234",
		Timestamp:  time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Summary:    domain.Summary{Changed: 3, Formatted: 4, Failed: 1},
	}

	e := domain.EntryFor(r)
	assert.Equal(t, domain.RunEntry{
		RunID:      "run-1",
		Timestamp:  "2026-03-01T12:30:00Z",
		CommitHash: "abc1234",
		Descriptor: "/src/Shop.sln",
		Target:     domain.TargetNUnit,
		DryRun:     true,
		Changed:    3,
		Formatted:  4,
		Failed:     1,
	}, e)
}
