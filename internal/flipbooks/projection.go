package flipbooks

import "github.com/JaimeStill/flipbook-lab/pkg/query"

// documentsProjection maps document columns to domain field names for the
// query builder. Settings and tags are jsonb; the TagsText expression exists
// only for free-text search conditions.
func documentsProjection() *query.ProjectionMap {
	return query.NewProjectionMap("flipbook", "documents", "d").
		Project("id", "ID").
		Project("title", "Title").
		Project("description", "Description").
		Project("file_name", "FileName").
		Project("file_size", "FileSize").
		Project("module_type", "ModuleType").
		Project("organization_id", "OrganizationID").
		Project("workspace_id", "WorkspaceID").
		Project("total_pages", "TotalPages").
		Project("thumbnail", "Thumbnail").
		Project("source_ref", "SourceRef").
		Project("storage_prefix", "StoragePrefix").
		Project("settings", "Settings").
		Project("tags", "Tags").
		Project("total_views", "TotalViews").
		Project("unique_viewers", "UniqueViewers").
		Project("last_viewed_at", "LastViewedAt").
		Project("average_time_spent", "AverageTimeSpent").
		Project("completion_rate", "CompletionRate").
		Project("uploaded_at", "UploadedAt").
		Project("last_modified", "LastModified").
		ProjectExpr("d.tags::text", "TagsText")
}

// sortField maps a listing sort key to its projected domain field.
func sortField(by SortField) string {
	switch by {
	case SortByName:
		return "Title"
	case SortByViews:
		return "TotalViews"
	case SortBySize:
		return "FileSize"
	default:
		return "UploadedAt"
	}
}
