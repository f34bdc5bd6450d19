package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to all scoped entities
var CommonSortFields = map[string]bool{
	"guid":       true,
	"created_at": true,
	"updated_at": true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"guid":          true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"due_date":      true,
	"in_production": true,
}

// ComponentSortFields contains allowed sort fields for components
var ComponentSortFields = map[string]bool{
	"guid":        true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"designation": true,
	"quantity":    true,
}

// AssemblySortFields contains allowed sort fields for assemblies
var AssemblySortFields = map[string]bool{
	"guid":        true,
	"created_at":  true,
	"updated_at":  true,
	"trolley":     true,
	"cell_number": true,
}

// PieceSortFields contains allowed sort fields for pieces
var PieceSortFields = map[string]bool{
	"guid":         true,
	"created_at":   true,
	"updated_at":   true,
	"piece_code":   true,
	"barcode":      true,
	"trolley":      true,
	"cell":         true,
	"profile_code": true,
	"outer_length": true,
}

// ArticleSortFields contains allowed sort fields for articles
var ArticleSortFields = map[string]bool{
	"guid":        true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"designation": true,
	"quantity":    true,
	"unit":        true,
}

// WorkflowSortFields contains allowed sort fields for workflow entries
var WorkflowSortFields = map[string]bool{
	"guid":        true,
	"created_at":  true,
	"action_type": true,
	"user_name":   true,
}
