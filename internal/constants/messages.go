package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Admin role required"

	// Catalog-specific messages
	MsgLinkNotFound      = "Link not found"
	MsgCategoryNotFound  = "Category not found"
	MsgCategoryNameTaken = "A category with that name already exists"

	// Auth-specific messages
	MsgInvalidCredentials = "Invalid email or password"
)
