package flipbooks

import "github.com/JaimeStill/flipbook-lab/pkg/openapi"

// apiSpec defines OpenAPI operations for flipbook endpoints.
type apiSpec struct {
	Upload       *openapi.Operation
	UploadStream *openapi.Operation
	List         *openapi.Operation
	Find         *openapi.Operation
	Update       *openapi.Operation
	Delete       *openapi.Operation
	Search       *openapi.Operation
	CreateShare  *openapi.Operation
	FindShare    *openapi.Operation
	Export       *openapi.Operation
	TrackView    *openapi.Operation
	PageAsset    *openapi.Operation
}

var uploadForm = &openapi.RequestBody{
	Required: true,
	Content: map[string]*openapi.MediaType{
		"multipart/form-data": {Schema: &openapi.Schema{
			Type:     "object",
			Required: []string{"file"},
			Properties: map[string]*openapi.Property{
				"file":        {Type: "string", Format: "binary", Description: "Source document"},
				"title":       {Type: "string", Description: "Display title, defaults to document metadata"},
				"description": {Type: "string"},
				"module_type": {Type: "string"},
				"tags":        {Type: "string", Description: "Comma-separated tags"},
				"settings":    {Type: "string", Description: "JSON settings patch"},
			},
		}},
	},
}

// Spec provides OpenAPI specifications for all flipbook endpoints.
var Spec = apiSpec{
	Upload: &openapi.Operation{
		Summary:     "Upload a document",
		Description: "Validate and convert an uploaded document into a flipbook",
		RequestBody: uploadForm,
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Converted document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			413: {Description: "File exceeds the upload limit"},
			415: {Description: "Unsupported content type"},
		},
	},
	UploadStream: &openapi.Operation{
		Summary:     "Upload a document with progress",
		Description: "Same as upload, with conversion progress delivered as server-sent events",
		RequestBody: uploadForm,
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Progress event stream ending in a document or error event",
				Content: map[string]*openapi.MediaType{
					"text/event-stream": {Schema: &openapi.Schema{Type: "string"}},
				},
			},
		},
	},
	List: &openapi.Operation{
		Summary:     "List documents",
		Description: "List documents with optional filters, sorting, and pagination",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("search", "string", "Match against title, description, and tags", false),
			openapi.QueryParam("module_type", "string", "Filter by module type", false),
			openapi.QueryParam("tags", "string", "Comma-separated tags, matches documents carrying any", false),
			openapi.QueryParam("date_from", "string", "Inclusive lower upload-date bound (RFC 3339)", false),
			openapi.QueryParam("date_to", "string", "Inclusive upper upload-date bound (RFC 3339)", false),
			openapi.QueryParam("sort_by", "string", "date, name, views, or size", false),
			openapi.QueryParam("sort_order", "string", "asc (default) or desc", false),
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Items per page", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document page result", "DocumentPageResult"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find a document",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update a document",
		Description: "Partially update document metadata and settings",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
		},
		RequestBody: openapi.RequestBodyJSON("UpdateCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated document", "Document"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete a document",
		Description: "Delete a document and its stored artifacts",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Document deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search document text",
		Description: "Search the document's page text and return excerpts",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
			openapi.QueryParam("q", "string", "Search query", true),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Search results", "SearchResultArray"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	CreateShare: &openapi.Operation{
		Summary: "Create a share",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
		},
		RequestBody: openapi.RequestBodyJSON("ShareCommand", false),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created share", "Share"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	FindShare: &openapi.Operation{
		Summary: "Resolve a share",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("shareId", "", "Share ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Share", "Share"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Export: &openapi.Operation{
		Summary: "Export document content",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
			openapi.QueryParam("format", "string", "Export format, text by default", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Exported content",
				Content: map[string]*openapi.MediaType{
					"text/plain": {Schema: &openapi.Schema{Type: "string"}},
				},
			},
			400: {Description: "Unsupported export format"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	TrackView: &openapi.Operation{
		Summary:     "Track a view",
		Description: "Record a view event. Always accepted; failures are never surfaced.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
		},
		RequestBody: openapi.RequestBodyJSON("ViewEvent", true),
		Responses: map[int]*openapi.Response{
			202: {Description: "View event accepted"},
		},
	},
	PageAsset: &openapi.Operation{
		Summary: "Get a page image",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Document ID"),
			{
				Name:        "page",
				In:          "path",
				Required:    true,
				Description: "Page number",
				Schema:      &openapi.Schema{Type: "integer"},
			},
			openapi.QueryParam("thumbnail", "boolean", "Serve the thumbnail rendition", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Page image data",
				Content: map[string]*openapi.MediaType{
					"application/pdf": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"image/png":       {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Components returns the reusable schema and response definitions referenced
// by the flipbook operations.
func Components() *openapi.Components {
	return &openapi.Components{
		Schemas: map[string]*openapi.Schema{
			"Document": {
				Type: "object",
				Properties: map[string]*openapi.Property{
					"id":          {Type: "string", Format: "uuid"},
					"title":       {Type: "string"},
					"description": {Type: "string"},
					"module_type": {Type: "string"},
					"file_name":   {Type: "string"},
					"file_size":   {Type: "integer", Format: "int64"},
					"total_pages": {Type: "integer"},
					"thumbnail":   {Type: "string"},
					"uploaded_at": {Type: "string", Format: "date-time"},
				},
			},
			"DocumentPageResult": {
				Type: "object",
				Properties: map[string]*openapi.Property{
					"total":       {Type: "integer"},
					"page":        {Type: "integer"},
					"page_size":   {Type: "integer"},
					"total_pages": {Type: "integer"},
				},
			},
			"UpdateCommand": {
				Type:        "object",
				Description: "Partial document update; absent fields are left unchanged",
				Properties: map[string]*openapi.Property{
					"title":       {Type: "string"},
					"description": {Type: "string"},
					"module_type": {Type: "string"},
				},
			},
			"ShareCommand": {
				Type: "object",
				Properties: map[string]*openapi.Property{
					"mode":       {Type: "string", Description: "public, password, or restricted"},
					"expires_at": {Type: "string", Format: "date-time"},
					"max_views":  {Type: "integer"},
				},
			},
			"Share": {
				Type: "object",
				Properties: map[string]*openapi.Property{
					"id":          {Type: "string"},
					"document_id": {Type: "string", Format: "uuid"},
					"share_url":   {Type: "string"},
					"embed_code":  {Type: "string"},
				},
			},
			"ViewEvent": {
				Type: "object",
				Properties: map[string]*openapi.Property{
					"page_number": {Type: "integer"},
					"timestamp":   {Type: "string", Format: "date-time"},
					"user_id":     {Type: "string"},
				},
			},
			"SearchResultArray": {
				Type: "array",
				Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Property{
						"page_number": {Type: "integer"},
						"matches":     {Type: "integer"},
					},
				},
			},
		},
		Responses: map[string]*openapi.Response{
			"NotFound":   {Description: "Resource not found"},
			"BadRequest": {Description: "Malformed request"},
		},
	}
}
