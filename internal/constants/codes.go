package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"

	// Catalog-specific codes
	CodeLinkNotFound      = "LINK_NOT_FOUND"
	CodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	CodeCategoryNameTaken = "CATEGORY_NAME_TAKEN"

	// Auth-specific codes
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Success codes
	CodeLinksFound      = "LINKS_FOUND"
	CodeLinkCreated     = "LINK_CREATED"
	CodeLinkUpdated     = "LINK_UPDATED"
	CodeLinkDeleted     = "LINK_DELETED"
	CodeClickRecorded   = "CLICK_RECORDED"
	CodeCategoriesFound = "CATEGORIES_FOUND"
	CodeCategoryCreated = "CATEGORY_CREATED"
	CodeCategoryUpdated = "CATEGORY_UPDATED"
	CodeCategoryDeleted = "CATEGORY_DELETED"
	CodeStatsFound      = "STATS_FOUND"
	CodeLoginOK         = "LOGIN_OK"
)
